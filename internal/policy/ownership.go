// Package policy holds the ownership rules that keep partner data
// scoped to the partner that created it.
package policy

// Ownable is implemented by models that belong to a single partner.
type Ownable interface {
	GetUserID() uint
}

// Owns reports whether the user owns the resource. A missing resource
// is never owned.
func Owns(resource Ownable, userID uint) bool {
	if resource == nil {
		return false
	}
	return resource.GetUserID() == userID
}
