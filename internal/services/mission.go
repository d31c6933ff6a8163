// Package services encapsulates the business logic behind the mission
// handlers: intake persistence, the status state machine, and report
// section merging.
package services

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/certilux/cert-app/internal/events"
	"github.com/certilux/cert-app/internal/models"
	"github.com/certilux/cert-app/internal/report"
	"github.com/certilux/cert-app/internal/wizard"
)

var (
	ErrNotFound          = errors.New("mission not found")
	ErrUnknownTier       = errors.New("unknown service tier")
	ErrInvalidTransition = errors.New("status transition not allowed")
)

// WarningNoReport is returned when a mission completes without a
// certification report. It is advisory, not a gate.
const WarningNoReport = "no_certification_report"

type MissionService struct {
	db  *gorm.DB
	pub events.Publisher
}

func NewMissionService(db *gorm.DB, pub events.Publisher) *MissionService {
	return &MissionService{db: db, pub: pub}
}

// IntakeInput is the aggregate the wizard submits on completion.
type IntakeInput struct {
	UserID        uint
	Info          wizard.ClientInfo
	TierCode      string
	PaymentMethod models.PaymentMethod
	Notes         string
}

// IntakeResult reports what was persisted. PaymentPending is true for
// the online method, where a processor redirect follows.
type IntakeResult struct {
	Client         models.Client
	Mission        models.Mission
	PaymentPending bool
}

// Tiers returns the active tiers, cheapest first.
func (s *MissionService) Tiers() ([]models.ServiceTier, error) {
	var tiers []models.ServiceTier
	if err := s.db.Where("active = ?", true).Order("price").Find(&tiers).Error; err != nil {
		return nil, err
	}
	return tiers, nil
}

// TierCatalog returns the active tier codes, for wizard validation.
func (s *MissionService) TierCatalog() ([]string, error) {
	var tiers []models.ServiceTier
	if err := s.db.Where("active = ?", true).Order("price").Find(&tiers).Error; err != nil {
		return nil, err
	}
	codes := make([]string, len(tiers))
	for i, t := range tiers {
		codes[i] = t.Code
	}
	return codes, nil
}

// CreateIntake persists the wizard aggregate atomically: client,
// mission and payment either all exist afterwards or none do.
func (s *MissionService) CreateIntake(ctx context.Context, in IntakeInput) (*IntakeResult, error) {
	var tier models.ServiceTier
	if err := s.db.Where("code = ? AND active = ?", in.TierCode, true).First(&tier).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnknownTier
		}
		return nil, err
	}

	client := models.Client{
		UserID:     in.UserID,
		Prenom:     in.Info.FirstName,
		Nom:        in.Info.LastName,
		Email:      in.Info.Email,
		Phone:      in.Info.Phone,
		Address:    in.Info.Address,
		PostalCode: in.Info.PostalCode,
		City:       in.Info.City,
		Country:    in.Info.Country,
	}
	mission := models.Mission{
		UserID:        in.UserID,
		TierCode:      tier.Code,
		PaymentMethod: in.PaymentMethod,
		Status:        models.MissionStatusPending,
		Notes:         in.Notes,
	}
	// In-shop methods are settled at the counter; online stays pending
	// until the processor callback.
	payStatus := models.PaymentStatusPaid
	if in.PaymentMethod == models.PaymentOnline {
		payStatus = models.PaymentStatusPending
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&client).Error; err != nil {
			return err
		}
		ref, err := models.GenerateMissionReference(tx, in.UserID, time.Now().Year())
		if err != nil {
			return err
		}
		mission.Reference = ref
		mission.ClientID = client.ID
		if err := tx.Create(&mission).Error; err != nil {
			return err
		}
		payment := models.Payment{
			MissionID: mission.ID,
			Method:    in.PaymentMethod,
			Amount:    tier.Price,
			Currency:  tier.Currency,
			Status:    payStatus,
		}
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}
		return tx.Create(&models.AuditLog{
			UserID:     in.UserID,
			EntityType: "Mission",
			EntityID:   mission.ID,
			Action:     "create",
			NewValue:   string(mission.Status),
		}).Error
	})
	if err != nil {
		return nil, err
	}

	if s.pub != nil {
		go s.pub.Publish(context.WithoutCancel(ctx), events.Event{
			Type:      events.MissionCreated,
			MissionID: mission.ID,
			UserID:    in.UserID,
			Status:    string(mission.Status),
		})
	}

	mission.Client = &client
	return &IntakeResult{
		Client:         client,
		Mission:        mission,
		PaymentPending: in.PaymentMethod == models.PaymentOnline,
	}, nil
}

// Get loads a mission scoped to its owner.
func (s *MissionService) Get(userID, missionID uint) (*models.Mission, error) {
	var m models.Mission
	err := s.db.Preload("Client").Where("id = ? AND user_id = ?", missionID, userID).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Transition moves a mission through its state machine. Completing a
// mission without a report succeeds but returns WarningNoReport.
func (s *MissionService) Transition(ctx context.Context, userID, missionID uint, next models.MissionStatus) (*models.Mission, string, error) {
	m, err := s.Get(userID, missionID)
	if err != nil {
		return nil, "", err
	}
	if !m.CanTransitionTo(next) {
		return nil, "", ErrInvalidTransition
	}

	warning := ""
	prev := m.Status
	updates := map[string]any{"status": next}
	if next == models.MissionStatusCompleted {
		now := time.Now()
		updates["completed_at"] = &now
		m.CompletedAt = &now
		var count int64
		if err := s.db.Model(&models.CertificationReport{}).Where("mission_id = ?", m.ID).Count(&count).Error; err == nil && count == 0 {
			warning = WarningNoReport
		}
	}
	if err := s.db.Model(m).Updates(updates).Error; err != nil {
		return nil, "", err
	}
	m.Status = next

	if err := s.db.Create(&models.AuditLog{
		UserID:     userID,
		EntityType: "Mission",
		EntityID:   m.ID,
		Action:     "status_change",
		OldValue:   string(prev),
		NewValue:   string(next),
	}).Error; err != nil {
		zap.L().Warn("audit write failed", zap.Error(err))
	}

	if s.pub != nil {
		go s.pub.Publish(context.WithoutCancel(ctx), events.Event{
			Type:      events.MissionStatusChanged,
			MissionID: m.ID,
			UserID:    userID,
			Status:    string(next),
		})
	}
	return m, warning, nil
}

// SaveReportSection merges one section's submitted fields into the
// mission's report, creating the report lazily on first save. Fields
// belonging to other sections are never touched.
func (s *MissionService) SaveReportSection(ctx context.Context, userID, missionID uint, section report.Section, form map[string]string) (*models.CertificationReport, error) {
	m, err := s.Get(userID, missionID)
	if err != nil {
		return nil, err
	}
	incoming := report.CollectSection(section, form)

	var rep models.CertificationReport
	err = s.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("mission_id = ?", m.ID).First(&rep).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			rep = models.CertificationReport{MissionID: m.ID, Fields: report.FieldMap{}}
		} else if err != nil {
			return err
		}
		rep.MergeFields(incoming)
		return tx.Save(&rep).Error
	})
	if err != nil {
		return nil, err
	}

	if err := s.db.Create(&models.AuditLog{
		UserID:     userID,
		EntityType: "CertificationReport",
		EntityID:   rep.ID,
		Action:     "report_save",
		NewValue:   string(section),
	}).Error; err != nil {
		zap.L().Warn("audit write failed", zap.Error(err))
	}

	if s.pub != nil {
		go s.pub.Publish(context.WithoutCancel(ctx), events.Event{
			Type:      events.ReportSaved,
			MissionID: m.ID,
			UserID:    userID,
			Section:   string(section),
		})
	}
	return &rep, nil
}

// LoadReport returns the report fields for a mission, or an empty map
// when no report exists yet.
func (s *MissionService) LoadReport(userID, missionID uint) (report.FieldMap, error) {
	if _, err := s.Get(userID, missionID); err != nil {
		return nil, err
	}
	var rep models.CertificationReport
	err := s.db.Where("mission_id = ?", missionID).First(&rep).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return report.FieldMap{}, nil
	}
	if err != nil {
		return nil, err
	}
	if rep.Fields == nil {
		return report.FieldMap{}, nil
	}
	return rep.Fields, nil
}
