package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/medagenda/agenda/internal/model"
)

// memDB — общая память трёх тестовых хранилищ. Позволяет инъецировать
// отказы по именам операций и моделировать частичную пакетную вставку.
type memDB struct {
	appointments map[uuid.UUID]*model.Appointment
	series       map[uuid.UUID]*model.Series
	activity     []*model.ActivityRecord

	failOn map[string]error

	// insertFailAfter > 0: InsertBatch вставляет столько приёмов и падает
	insertFailAfter int
}

func newMemDB() *memDB {
	return &memDB{
		appointments: make(map[uuid.UUID]*model.Appointment),
		series:       make(map[uuid.UUID]*model.Series),
		failOn:       make(map[string]error),
	}
}

func (db *memDB) fail(op string) {
	db.failOn[op] = errors.New(op + " failed")
}

func (db *memDB) check(op string) error {
	return db.failOn[op]
}

func (db *memDB) putAppointment(a *model.Appointment) {
	cp := *a
	db.appointments[a.ID] = &cp
}

type memAppointmentStore struct{ db *memDB }

func (s *memAppointmentStore) GetByID(_ context.Context, id uuid.UUID) (*model.Appointment, error) {
	if err := s.db.check("GetByID"); err != nil {
		return nil, err
	}
	appt, ok := s.db.appointments[id]
	if !ok {
		return nil, nil
	}
	cp := *appt
	return &cp, nil
}

func (s *memAppointmentStore) QueryOverlapping(_ context.Context, doctorID uuid.UUID, from, to time.Time) ([]*model.Appointment, error) {
	if err := s.db.check("QueryOverlapping"); err != nil {
		return nil, err
	}
	var out []*model.Appointment
	for _, a := range s.db.appointments {
		if a.DoctorID != doctorID || a.Status == model.StatusCancelada {
			continue
		}
		if a.StartTime.Before(to) && from.Before(a.EndTime) {
			cp := *a
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

func (s *memAppointmentStore) ListBySeries(_ context.Context, seriesID uuid.UUID) ([]*model.Appointment, error) {
	if err := s.db.check("ListBySeries"); err != nil {
		return nil, err
	}
	var out []*model.Appointment
	for _, a := range s.db.appointments {
		if a.SeriesID != nil && *a.SeriesID == seriesID {
			cp := *a
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return *out[i].RecurrenceIndex < *out[j].RecurrenceIndex })
	return out, nil
}

func (s *memAppointmentStore) InsertBatch(_ context.Context, appts []*model.Appointment) ([]uuid.UUID, error) {
	if err := s.db.check("InsertBatch"); err != nil {
		return nil, err
	}
	var inserted []uuid.UUID
	for i, a := range appts {
		if s.db.insertFailAfter > 0 && i >= s.db.insertFailAfter {
			return inserted, errors.New("insert failed midway")
		}
		s.db.putAppointment(a)
		inserted = append(inserted, a.ID)
	}
	return inserted, nil
}

func (s *memAppointmentStore) UpdateStatus(_ context.Context, id uuid.UUID, status model.AppointmentStatus) error {
	if err := s.db.check("UpdateStatus"); err != nil {
		return err
	}
	if a, ok := s.db.appointments[id]; ok {
		a.Status = status
	}
	return nil
}

func (s *memAppointmentStore) UpdateWindow(_ context.Context, id uuid.UUID, start, end time.Time) error {
	if err := s.db.check("UpdateWindow"); err != nil {
		return err
	}
	if a, ok := s.db.appointments[id]; ok {
		a.StartTime = start
		a.EndTime = end
	}
	return nil
}

func (s *memAppointmentStore) AtomicSwap(_ context.Context, a, b SwapUpdate) error {
	if err := s.db.check("AtomicSwap"); err != nil {
		return err
	}
	first, ok1 := s.db.appointments[a.ID]
	second, ok2 := s.db.appointments[b.ID]
	if !ok1 || !ok2 {
		return errors.New("appointment not found")
	}
	// Оптимистическая защита: оба ожидания проверяются до любой записи
	if !first.StartTime.Equal(a.ExpectedStart) || !second.StartTime.Equal(b.ExpectedStart) {
		return errors.New("concurrent modification")
	}
	first.StartTime, first.EndTime = a.NewStart, a.NewEnd
	second.StartTime, second.EndTime = b.NewStart, b.NewEnd
	return nil
}

func (s *memAppointmentStore) CancelPendingBySeries(_ context.Context, seriesID uuid.UUID) (int64, error) {
	if err := s.db.check("CancelPendingBySeries"); err != nil {
		return 0, err
	}
	var n int64
	for _, a := range s.db.appointments {
		if a.SeriesID != nil && *a.SeriesID == seriesID && a.Status == model.StatusPendiente {
			a.Status = model.StatusCancelada
			n++
		}
	}
	return n, nil
}

func (s *memAppointmentStore) CancelPendingStartingAt(_ context.Context, seriesID uuid.UUID, from time.Time) (int64, error) {
	if err := s.db.check("CancelPendingStartingAt"); err != nil {
		return 0, err
	}
	var n int64
	for _, a := range s.db.appointments {
		if a.SeriesID != nil && *a.SeriesID == seriesID && a.Status == model.StatusPendiente && !a.StartTime.Before(from) {
			a.Status = model.StatusCancelada
			n++
		}
	}
	return n, nil
}

type memSeriesStore struct{ db *memDB }

func (s *memSeriesStore) Insert(_ context.Context, series *model.Series) error {
	if err := s.db.check("SeriesInsert"); err != nil {
		return err
	}
	cp := *series
	s.db.series[series.ID] = &cp
	return nil
}

func (s *memSeriesStore) GetByID(_ context.Context, id uuid.UUID) (*model.Series, error) {
	if err := s.db.check("SeriesGetByID"); err != nil {
		return nil, err
	}
	srs, ok := s.db.series[id]
	if !ok {
		return nil, nil
	}
	cp := *srs
	return &cp, nil
}

func (s *memSeriesStore) ListActiveByDoctor(_ context.Context, doctorID uuid.UUID) ([]*model.Series, error) {
	if err := s.db.check("ListActiveByDoctor"); err != nil {
		return nil, err
	}
	var out []*model.Series
	for _, srs := range s.db.series {
		if srs.DoctorID == doctorID && srs.IsActive {
			cp := *srs
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *memSeriesStore) UpdateCounter(_ context.Context, id uuid.UUID, count int) error {
	if err := s.db.check("UpdateCounter"); err != nil {
		return err
	}
	if srs, ok := s.db.series[id]; ok {
		srs.OccurrencesCreated = count
	}
	return nil
}

func (s *memSeriesStore) SetActive(_ context.Context, id uuid.UUID, active bool) error {
	if err := s.db.check("SetActive"); err != nil {
		return err
	}
	if srs, ok := s.db.series[id]; ok {
		srs.IsActive = active
	}
	return nil
}

type memActivityStore struct{ db *memDB }

func (s *memActivityStore) Record(_ context.Context, rec *model.ActivityRecord) error {
	if err := s.db.check("Record"); err != nil {
		return err
	}
	s.db.activity = append(s.db.activity, rec)
	return nil
}
