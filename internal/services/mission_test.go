package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/certilux/cert-app/internal/models"
	"github.com/certilux/cert-app/internal/report"
	"github.com/certilux/cert-app/internal/wizard"
)

func setupServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.ServiceTier{}, &models.Client{}, &models.Mission{}, &models.CertificationReport{}, &models.Payment{}, &models.AuditLog{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedPartnerAndTiers(t *testing.T, db *gorm.DB) models.User {
	t.Helper()
	user := models.User{Email: "partner@test", Password: "x", Role: models.RolePartner, ShopName: "Atelier"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("user: %v", err)
	}
	tiers := []models.ServiceTier{
		{Code: "custodia", Name: "Custodia", Price: 149, Currency: "EUR", Active: true},
		{Code: "imperium", Name: "Imperium", Price: 349, Currency: "EUR", Active: true},
	}
	for i := range tiers {
		if err := db.Create(&tiers[i]).Error; err != nil {
			t.Fatalf("tier: %v", err)
		}
	}
	return user
}

func intakeInput(userID uint, method models.PaymentMethod) IntakeInput {
	return IntakeInput{
		UserID: userID,
		Info: wizard.ClientInfo{
			FirstName: "Jean", LastName: "Dupont",
			Email: "jean@dupont.fr", Phone: "+33611223344",
		},
		TierCode:      "custodia",
		PaymentMethod: method,
	}
}

func TestCreateIntakePersistsClientMissionPayment(t *testing.T) {
	db := setupServiceTestDB(t)
	user := seedPartnerAndTiers(t, db)
	svc := NewMissionService(db, nil)

	res, err := svc.CreateIntake(context.Background(), intakeInput(user.ID, models.PaymentCash))
	if err != nil {
		t.Fatalf("intake: %v", err)
	}
	if res.Mission.Status != models.MissionStatusPending {
		t.Errorf("new mission status = %s", res.Mission.Status)
	}
	if res.Mission.Reference == "" {
		t.Error("mission reference not generated")
	}
	if res.PaymentPending {
		t.Error("cash intake marked payment pending")
	}

	var client models.Client
	if err := db.First(&client, res.Client.ID).Error; err != nil {
		t.Fatalf("client not persisted: %v", err)
	}
	var payment models.Payment
	if err := db.Where("mission_id = ?", res.Mission.ID).First(&payment).Error; err != nil {
		t.Fatalf("payment not persisted: %v", err)
	}
	if payment.Status != models.PaymentStatusPaid || payment.Amount != 149 {
		t.Errorf("payment = %s %v", payment.Status, payment.Amount)
	}
}

func TestCreateIntakeOnlineSignalsRedirect(t *testing.T) {
	db := setupServiceTestDB(t)
	user := seedPartnerAndTiers(t, db)
	svc := NewMissionService(db, nil)

	res, err := svc.CreateIntake(context.Background(), intakeInput(user.ID, models.PaymentOnline))
	if err != nil {
		t.Fatalf("intake: %v", err)
	}
	if !res.PaymentPending {
		t.Error("online intake must signal pending payment")
	}
	var payment models.Payment
	if err := db.Where("mission_id = ?", res.Mission.ID).First(&payment).Error; err != nil {
		t.Fatal(err)
	}
	if payment.Status != models.PaymentStatusPending {
		t.Errorf("online payment status = %s", payment.Status)
	}
}

func TestCreateIntakeUnknownTier(t *testing.T) {
	db := setupServiceTestDB(t)
	user := seedPartnerAndTiers(t, db)
	svc := NewMissionService(db, nil)

	in := intakeInput(user.ID, models.PaymentCash)
	in.TierCode = "platine"
	if _, err := svc.CreateIntake(context.Background(), in); !errors.Is(err, ErrUnknownTier) {
		t.Fatalf("expected ErrUnknownTier, got %v", err)
	}
	var count int64
	db.Model(&models.Client{}).Count(&count)
	if count != 0 {
		t.Error("client persisted despite failed intake")
	}
}

func TestTransitionLifecycle(t *testing.T) {
	db := setupServiceTestDB(t)
	user := seedPartnerAndTiers(t, db)
	svc := NewMissionService(db, nil)
	res, _ := svc.CreateIntake(context.Background(), intakeInput(user.ID, models.PaymentCash))
	id := res.Mission.ID

	m, warning, err := svc.Transition(context.Background(), user.ID, id, models.MissionStatusInProgress)
	if err != nil || m.Status != models.MissionStatusInProgress {
		t.Fatalf("start: %v %v", err, m)
	}
	if warning != "" {
		t.Errorf("unexpected warning on start: %s", warning)
	}

	m, warning, err = svc.Transition(context.Background(), user.ID, id, models.MissionStatusCompleted)
	if err != nil || m.Status != models.MissionStatusCompleted {
		t.Fatalf("complete: %v %v", err, m)
	}
	if warning != WarningNoReport {
		t.Errorf("expected no-report warning, got %q", warning)
	}
	if m.CompletedAt == nil {
		t.Error("completion timestamp not set")
	}

	// Terminal: every further transition is rejected.
	for _, next := range []models.MissionStatus{models.MissionStatusPending, models.MissionStatusInProgress, models.MissionStatusCancelled} {
		if _, _, err := svc.Transition(context.Background(), user.ID, id, next); !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("completed -> %s allowed: %v", next, err)
		}
	}
}

func TestTransitionCancelledIsTerminal(t *testing.T) {
	db := setupServiceTestDB(t)
	user := seedPartnerAndTiers(t, db)
	svc := NewMissionService(db, nil)
	res, _ := svc.CreateIntake(context.Background(), intakeInput(user.ID, models.PaymentCash))

	if _, _, err := svc.Transition(context.Background(), user.ID, res.Mission.ID, models.MissionStatusCancelled); err != nil {
		t.Fatalf("cancel from pending: %v", err)
	}
	if _, _, err := svc.Transition(context.Background(), user.ID, res.Mission.ID, models.MissionStatusInProgress); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("cancelled -> in_progress allowed: %v", err)
	}
}

func TestTransitionSkippingRejected(t *testing.T) {
	db := setupServiceTestDB(t)
	user := seedPartnerAndTiers(t, db)
	svc := NewMissionService(db, nil)
	res, _ := svc.CreateIntake(context.Background(), intakeInput(user.ID, models.PaymentCash))

	if _, _, err := svc.Transition(context.Background(), user.ID, res.Mission.ID, models.MissionStatusCompleted); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("pending -> completed allowed: %v", err)
	}
}

func TestCompleteWithReportNoWarning(t *testing.T) {
	db := setupServiceTestDB(t)
	user := seedPartnerAndTiers(t, db)
	svc := NewMissionService(db, nil)
	res, _ := svc.CreateIntake(context.Background(), intakeInput(user.ID, models.PaymentCash))
	id := res.Mission.ID

	if _, _, err := svc.Transition(context.Background(), user.ID, id, models.MissionStatusInProgress); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.SaveReportSection(context.Background(), user.ID, id, report.SectionGeneral, map[string]string{"general_brand": "Rolex"}); err != nil {
		t.Fatal(err)
	}
	_, warning, err := svc.Transition(context.Background(), user.ID, id, models.MissionStatusCompleted)
	if err != nil {
		t.Fatal(err)
	}
	if warning != "" {
		t.Errorf("warning despite existing report: %q", warning)
	}
}

func TestSaveReportSectionPartialMerge(t *testing.T) {
	db := setupServiceTestDB(t)
	user := seedPartnerAndTiers(t, db)
	svc := NewMissionService(db, nil)
	res, _ := svc.CreateIntake(context.Background(), intakeInput(user.ID, models.PaymentCash))
	id := res.Mission.ID

	if _, err := svc.SaveReportSection(context.Background(), user.ID, id, report.SectionCase, map[string]string{
		"case_material": "steel",
		"case_polished": "on",
	}); err != nil {
		t.Fatalf("case save: %v", err)
	}
	// Saving dial fields must not touch previously saved case fields.
	if _, err := svc.SaveReportSection(context.Background(), user.ID, id, report.SectionDial, map[string]string{
		"dial_color": "black",
	}); err != nil {
		t.Fatalf("dial save: %v", err)
	}

	fields, err := svc.LoadReport(user.ID, id)
	if err != nil {
		t.Fatal(err)
	}
	if fields["case_material"] != report.TextValue("steel") {
		t.Errorf("case_material lost: %#v", fields["case_material"])
	}
	if fields["case_polished"] != report.BoolValue(true) {
		t.Errorf("case_polished lost: %#v", fields["case_polished"])
	}
	if fields["dial_color"] != report.TextValue("black") {
		t.Errorf("dial_color missing: %#v", fields["dial_color"])
	}
}

func TestReportBooleanRoundTripThroughStore(t *testing.T) {
	db := setupServiceTestDB(t)
	user := seedPartnerAndTiers(t, db)
	svc := NewMissionService(db, nil)
	res, _ := svc.CreateIntake(context.Background(), intakeInput(user.ID, models.PaymentCash))
	id := res.Mission.ID

	if _, err := svc.SaveReportSection(context.Background(), user.ID, id, report.SectionAccessories, map[string]string{
		"accessories_box": "on",
	}); err != nil {
		t.Fatal(err)
	}
	fields, _ := svc.LoadReport(user.ID, id)
	if fields.Display()["accessories_box"] != "true" {
		t.Fatalf("display = %q", fields.Display()["accessories_box"])
	}
	// Re-submit as the checkbox would send it.
	if _, err := svc.SaveReportSection(context.Background(), user.ID, id, report.SectionAccessories, map[string]string{
		"accessories_box": "on",
	}); err != nil {
		t.Fatal(err)
	}
	fields, _ = svc.LoadReport(user.ID, id)
	if fields["accessories_box"] != report.BoolValue(true) {
		t.Fatalf("round-trip lost the boolean: %#v", fields["accessories_box"])
	}
}

func TestLoadReportMissingMission(t *testing.T) {
	db := setupServiceTestDB(t)
	user := seedPartnerAndTiers(t, db)
	svc := NewMissionService(db, nil)
	if _, err := svc.LoadReport(user.ID, 999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMissionOwnershipScoping(t *testing.T) {
	db := setupServiceTestDB(t)
	user := seedPartnerAndTiers(t, db)
	other := models.User{Email: "other@test", Password: "x", Role: models.RolePartner}
	if err := db.Create(&other).Error; err != nil {
		t.Fatal(err)
	}
	svc := NewMissionService(db, nil)
	res, _ := svc.CreateIntake(context.Background(), intakeInput(user.ID, models.PaymentCash))

	if _, err := svc.Get(other.ID, res.Mission.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("foreign partner reached mission: %v", err)
	}
}
