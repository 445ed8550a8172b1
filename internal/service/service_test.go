package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/mmeshcher/discount-grid-system/internal/bulk"
	"github.com/mmeshcher/discount-grid-system/internal/model"
	"github.com/mmeshcher/discount-grid-system/internal/store"
)

type stubStore struct {
	records map[string]model.DiscountRecord

	updated []model.DiscountRecord
	deleted [][]string

	loadErr   error
	loadCount int
}

func newStubStore(records ...model.DiscountRecord) *stubStore {
	s := &stubStore{records: make(map[string]model.DiscountRecord)}
	for _, rec := range records {
		s.records[rec.ClientID] = rec
	}
	return s
}

func (s *stubStore) Load(ctx context.Context, count int) error {
	s.loadCount = count
	return s.loadErr
}

func (s *stubStore) FilteredView() []model.DiscountRecord {
	out := make([]model.DiscountRecord, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, rec)
	}
	return out
}

func (s *stubStore) SetFilter(field string, values []string) error { return nil }
func (s *stubStore) ClearFilters()                                 {}

func (s *stubStore) UniqueValues(field string) ([]string, error) { return nil, nil }

func (s *stubStore) GetRecord(clientID string) (model.DiscountRecord, bool) {
	rec, ok := s.records[clientID]
	return rec, ok
}

func (s *stubStore) UpdateRecord(rec model.DiscountRecord) {
	s.updated = append(s.updated, rec)
	s.records[rec.ClientID] = rec
}

func (s *stubStore) DeleteRecord(clientID string) {
	s.DeleteRecords([]string{clientID})
}

func (s *stubStore) DeleteRecords(clientIDs []string) {
	s.deleted = append(s.deleted, clientIDs)
	for _, id := range clientIDs {
		delete(s.records, id)
	}
}

func (s *stubStore) Stats() store.Stats {
	return store.Stats{TotalCount: len(s.records), FilteredCount: len(s.records)}
}

func validRecord(id string) model.DiscountRecord {
	return model.DiscountRecord{
		ClientID:  id,
		Client:    "Sega",
		Platform:  model.PlatformSteam,
		Region:    model.RegionGlobal,
		Percent:   40,
		StartDate: "2024-05-01",
		EndDate:   "2024-05-10",
	}
}

func intPtr(v int) *int { return &v }

func TestLoad_NegativeCount(t *testing.T) {
	svc := NewService(newStubStore(), bulk.New("discounts"))

	var verr *ValidationError
	if err := svc.Load(context.Background(), -1); !errors.As(err, &verr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
}

func TestUpdateRecord_UnknownID(t *testing.T) {
	svc := NewService(newStubStore(), bulk.New("discounts"))

	err := svc.UpdateRecord(validRecord("DSC-GHOST999999"))
	if !errors.Is(err, ErrRecordNotFound) {
		t.Fatalf("err = %v, want ErrRecordNotFound", err)
	}
}

func TestUpdateRecord_ValidationBlocksCommit(t *testing.T) {
	st := newStubStore(validRecord("DSC-SEGA000001"))
	svc := NewService(st, bulk.New("discounts"))

	rec := validRecord("DSC-SEGA000001")
	rec.Percent = 150

	var verr *ValidationError
	if err := svc.UpdateRecord(rec); !errors.As(err, &verr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	if len(st.updated) != 0 {
		t.Fatalf("invalid record must not reach the store")
	}
}

func TestUpdateRecord_Commits(t *testing.T) {
	st := newStubStore(validRecord("DSC-SEGA000001"))
	svc := NewService(st, bulk.New("discounts"))

	rec := validRecord("DSC-SEGA000001")
	rec.Percent = 60

	if err := svc.UpdateRecord(rec); err != nil {
		t.Fatalf("UpdateRecord error: %v", err)
	}
	if len(st.updated) != 1 || st.updated[0].Percent != 60 {
		t.Fatalf("unexpected commits: %+v", st.updated)
	}
}

func TestBulkUpdate_InvalidPatchRejectedBeforeResolve(t *testing.T) {
	st := newStubStore(validRecord("DSC-SEGA000001"))
	svc := NewService(st, bulk.New("discounts"))

	err := svc.BulkUpdate(context.Background(), []string{"DSC-SEGA000001"},
		bulk.Patch{DiscountPercent: intPtr(200)})

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	if len(st.updated) != 0 {
		t.Fatalf("invalid patch must not mutate the store")
	}
}

func TestBulkUpdate_UnknownSelectionID(t *testing.T) {
	svc := NewService(newStubStore(validRecord("DSC-SEGA000001")), bulk.New("discounts"))

	err := svc.BulkUpdate(context.Background(), []string{"DSC-GHOST999999"}, bulk.Patch{})
	if !errors.Is(err, ErrRecordNotFound) {
		t.Fatalf("err = %v, want ErrRecordNotFound", err)
	}
}

func TestBulkUpdate_CommitsThroughStore(t *testing.T) {
	st := newStubStore(validRecord("DSC-SEGA000001"), validRecord("DSC-VALVE000000"))
	svc := NewService(st, bulk.New("discounts"))

	err := svc.BulkUpdate(context.Background(),
		[]string{"DSC-SEGA000001", "DSC-VALVE000000"},
		bulk.Patch{DiscountName: "Mega Sale", DiscountPercent: intPtr(70)})
	if err != nil {
		t.Fatalf("BulkUpdate error: %v", err)
	}

	if len(st.updated) != 2 {
		t.Fatalf("updated = %d records, want 2", len(st.updated))
	}
	for _, rec := range st.updated {
		if rec.Discount != "Mega Sale" || rec.Percent != 70 {
			t.Fatalf("patch not applied: %+v", rec)
		}
	}

	status := svc.BulkStatus()
	if !strings.Contains(status.LastOperationResult, "Successfully updated 2") {
		t.Fatalf("result = %q", status.LastOperationResult)
	}
}

func TestBulkDelete_EmptySelection(t *testing.T) {
	svc := NewService(newStubStore(), bulk.New("discounts"))

	err := svc.BulkDelete(context.Background(), nil)
	if !errors.Is(err, bulk.ErrEmptySelection) {
		t.Fatalf("err = %v, want ErrEmptySelection", err)
	}
}

func TestBulkDelete_SingleBatch(t *testing.T) {
	st := newStubStore(validRecord("DSC-SEGA000001"), validRecord("DSC-VALVE000000"))
	svc := NewService(st, bulk.New("discounts"))

	if err := svc.BulkDelete(context.Background(), []string{"DSC-SEGA000001", "DSC-VALVE000000"}); err != nil {
		t.Fatalf("BulkDelete error: %v", err)
	}

	if len(st.deleted) != 1 {
		t.Fatalf("DeleteRecords called %d times, want 1", len(st.deleted))
	}
	if len(st.deleted[0]) != 2 {
		t.Fatalf("ids = %v, want 2 entries", st.deleted[0])
	}
}

func TestExportCSV_WritesSelection(t *testing.T) {
	st := newStubStore(validRecord("DSC-SEGA000001"))
	svc := NewService(st, bulk.New("discounts"))

	var buf bytes.Buffer
	filename, err := svc.ExportCSV(context.Background(), []string{"DSC-SEGA000001"}, "", &buf)
	if err != nil {
		t.Fatalf("ExportCSV error: %v", err)
	}

	if !strings.HasPrefix(filename, "discounts-") {
		t.Fatalf("filename = %q", filename)
	}
	if !strings.Contains(buf.String(), "DSC-SEGA000001") {
		t.Fatalf("exported csv does not contain the record")
	}
}
