package telecomdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	contractx "github.com/kermits/telassist/agent/contract"
)

var (
	workingHours = []string{"09:00", "10:00", "11:00", "14:00", "15:00", "16:00", "17:00"}
	fieldTeams   = []string{"Teknik Ekip A", "Teknik Ekip B", "Saha Destek"}

	turkishDays = map[time.Weekday]string{
		time.Monday:    "Pazartesi",
		time.Tuesday:   "Salı",
		time.Wednesday: "Çarşamba",
		time.Thursday:  "Perşembe",
		time.Friday:    "Cuma",
		time.Saturday:  "Cumartesi",
		time.Sunday:    "Pazar",
	}
)

// AppointmentStore schedules technical-support visits. Slot availability is
// computed, not stored: working-hour candidates over the window minus the
// bookings already on the calendar.
type AppointmentStore struct {
	db  *bun.DB
	now func() time.Time
}

var _ contractx.AppointmentService = (*AppointmentStore)(nil)

func NewAppointmentStore(db *bun.DB) *AppointmentStore {
	return &AppointmentStore{db: db, now: time.Now}
}

func (s *AppointmentStore) ActiveAppointment(ctx context.Context, customerID int64) (*contractx.Appointment, error) {
	var model Appointment
	err := s.db.NewSelect().
		Model(&model).
		Where("customer_id = ?", customerID).
		Where("appointment_status IN ('scheduled', 'pending', 'confirmed')").
		Where("appointment_date >= CURRENT_DATE").
		Order("appointment_date ASC", "appointment_hour ASC").
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: active appointment: %v", contractx.ErrDomainService, err)
	}

	return &contractx.Appointment{
		AppointmentID: model.AppointmentID,
		Date:          model.Date.Format(billDateLayout),
		Hour:          model.Hour,
		Team:          model.TeamName,
		Status:        model.Status,
	}, nil
}

func (s *AppointmentStore) AvailableSlots(ctx context.Context, daysAhead int) ([]contractx.Slot, error) {
	if daysAhead <= 0 {
		daysAhead = 7
	}
	start := s.now().AddDate(0, 0, 1)
	end := start.AddDate(0, 0, daysAhead-1)

	var booked []Appointment
	err := s.db.NewSelect().
		Model(&booked).
		Column("appointment_date", "appointment_hour", "team_name").
		Where("appointment_date BETWEEN ? AND ?", start.Format(billDateLayout), end.Format(billDateLayout)).
		Where("appointment_status IN ('scheduled', 'pending', 'confirmed')").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: booked slots: %v", contractx.ErrDomainService, err)
	}

	taken := make(map[string]struct{}, len(booked))
	for _, b := range booked {
		taken[slotKey(b.Date.Format(billDateLayout), b.Hour, b.TeamName)] = struct{}{}
	}

	var slots []contractx.Slot
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		if day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
			continue
		}
		date := day.Format(billDateLayout)
		for _, hour := range workingHours {
			for _, team := range fieldTeams {
				if _, ok := taken[slotKey(date, hour, team)]; ok {
					continue
				}
				slots = append(slots, contractx.Slot{
					Date:    date,
					DayName: turkishDays[day.Weekday()],
					Time:    hour,
					Team:    team,
				})
			}
		}
	}
	return slots, nil
}

func (s *AppointmentStore) CreateAppointment(ctx context.Context, customerID int64, date, hour, team, notes string) (int64, error) {
	conflict, err := s.db.NewSelect().
		Model((*Appointment)(nil)).
		Where("appointment_date = ?", date).
		Where("appointment_hour = ?", hour).
		Where("team_name = ?", team).
		Where("appointment_status IN ('scheduled', 'pending', 'confirmed')").
		Exists(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: check slot conflict: %v", contractx.ErrDomainService, err)
	}
	if conflict {
		return 0, fmt.Errorf("%w: slot %s %s (%s) already booked", contractx.ErrDomainService, date, hour, team)
	}

	day, err := time.Parse(billDateLayout, date)
	if err != nil {
		return 0, fmt.Errorf("%w: bad appointment date %q: %v", contractx.ErrDomainService, date, err)
	}

	model := &Appointment{
		CustomerID: customerID,
		TeamName:   team,
		Date:       day,
		Hour:       hour,
		Status:     "scheduled",
		Notes:      notes,
	}
	if _, err := s.db.NewInsert().
		Model(model).
		Returning("appointment_id").
		Exec(ctx); err != nil {
		return 0, fmt.Errorf("%w: create appointment: %v", contractx.ErrDomainService, err)
	}
	return model.AppointmentID, nil
}

func slotKey(date, hour, team string) string {
	return date + "_" + hour + "_" + team
}
