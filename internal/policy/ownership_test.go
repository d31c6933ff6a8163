package policy

import (
	"testing"

	"github.com/certilux/cert-app/internal/models"
)

func TestOwns(t *testing.T) {
	mission := &models.Mission{UserID: 7}
	client := &models.Client{UserID: 7}

	cases := []struct {
		name     string
		resource Ownable
		userID   uint
		want     bool
	}{
		{"mission owner", mission, 7, true},
		{"mission foreign user", mission, 8, false},
		{"client owner", client, 7, true},
		{"client foreign user", client, 8, false},
		{"missing resource", nil, 7, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Owns(tc.resource, tc.userID); got != tc.want {
				t.Errorf("Owns(%v, %d) = %v, want %v", tc.resource, tc.userID, got, tc.want)
			}
		})
	}
}
