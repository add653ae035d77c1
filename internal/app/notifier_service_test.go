package app

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"epi_notifier/internal/domain/equipment"
	"epi_notifier/internal/domain/recipient"
	"epi_notifier/internal/domain/report"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEquipmentRepo struct {
	records  []equipment.Record
	err      error
	gotStart time.Time
	gotEnd   time.Time
	calls    int
}

func (f *fakeEquipmentRepo) ListExpiringWithin(_ context.Context, start, end time.Time) ([]equipment.Record, error) {
	f.calls++
	f.gotStart, f.gotEnd = start, end
	return f.records, f.err
}

type fakeRecipientRepo struct {
	recipients []recipient.Recipient
	err        error
	calls      int
}

func (f *fakeRecipientRepo) ListNotifiable(_ context.Context) ([]recipient.Recipient, error) {
	f.calls++
	return f.recipients, f.err
}

type sentMail struct {
	to      string
	subject string
	body    string
}

type fakeSender struct {
	mu       sync.Mutex
	attempts []sentMail
	failFor  map[string]error
}

func (f *fakeSender) Send(_ context.Context, to, subject, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attempts = append(f.attempts, sentMail{to: to, subject: subject, body: body})
	if err, ok := f.failFor[to]; ok {
		return err
	}
	return nil
}

func (f *fakeSender) sentTo() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	tos := make([]string, 0, len(f.attempts))
	for _, a := range f.attempts {
		tos = append(tos, a.to)
	}
	return tos
}

var testNow = time.Date(2024, time.June, 15, 10, 0, 0, 0, time.UTC)

func buildTestReport() report.Report {
	return report.Build([]equipment.Record{
		{HolderName: "Ana", ExpiryDate: time.Date(2024, time.June, 2, 0, 0, 0, 0, time.UTC)},
	}, testNow)
}

func newTestNotifier(er equipment.Repository, rr recipient.Repository, sender *fakeSender) *ExpirationNotifierImpl {
	log := logrus.New()
	log.SetOutput(io.Discard)
	s := NewExpirationNotifier(er, rr, sender, log, time.Second, 2, "")
	s.clock = func() time.Time { return testNow }
	return s
}

func TestMonthWindow(t *testing.T) {
	tests := []struct {
		name      string
		now       time.Time
		wantStart time.Time
		wantEnd   time.Time
	}{
		{
			"mid June",
			time.Date(2024, time.June, 15, 10, 0, 0, 0, time.UTC),
			time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2024, time.June, 30, 0, 0, 0, 0, time.UTC),
		},
		{
			"leap February",
			time.Date(2024, time.February, 10, 0, 0, 0, 0, time.UTC),
			time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC),
		},
		{
			"non-leap February",
			time.Date(2023, time.February, 28, 23, 0, 0, 0, time.UTC),
			time.Date(2023, time.February, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2023, time.February, 28, 0, 0, 0, 0, time.UTC),
		},
		{
			"December stays within the year",
			time.Date(2023, time.December, 31, 0, 0, 0, 0, time.UTC),
			time.Date(2023, time.December, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2023, time.December, 31, 0, 0, 0, 0, time.UTC),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := monthWindow(tt.now)
			assert.Equal(t, tt.wantStart, start)
			assert.Equal(t, tt.wantEnd, end)
		})
	}
}

func TestRunOnceQueriesCurrentMonthWindow(t *testing.T) {
	equipRepo := &fakeEquipmentRepo{}
	recipRepo := &fakeRecipientRepo{}
	sender := &fakeSender{}
	s := newTestNotifier(equipRepo, recipRepo, sender)

	require.NoError(t, s.RunOnce(context.Background(), TriggerCron))

	assert.Equal(t, time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC), equipRepo.gotStart)
	assert.Equal(t, time.Date(2024, time.June, 30, 0, 0, 0, 0, time.UTC), equipRepo.gotEnd)
}

func TestRunOnceEmptyReportSendsNothing(t *testing.T) {
	equipRepo := &fakeEquipmentRepo{records: nil}
	recipRepo := &fakeRecipientRepo{recipients: []recipient.Recipient{{Name: "Bob", Email: "b@x.com"}}}
	sender := &fakeSender{}
	s := newTestNotifier(equipRepo, recipRepo, sender)

	require.NoError(t, s.RunOnce(context.Background(), TriggerCron))

	assert.Empty(t, sender.attempts)
	// Recipient list is not even read when there is nothing to report.
	assert.Zero(t, recipRepo.calls)
}

func TestRunOnceNoRecipientsIsNotAnError(t *testing.T) {
	equipRepo := &fakeEquipmentRepo{records: []equipment.Record{
		{HolderName: "Ana", ExpiryDate: time.Date(2024, time.June, 2, 0, 0, 0, 0, time.UTC)},
	}}
	recipRepo := &fakeRecipientRepo{}
	sender := &fakeSender{}
	s := newTestNotifier(equipRepo, recipRepo, sender)

	require.NoError(t, s.RunOnce(context.Background(), TriggerManual))
	assert.Empty(t, sender.attempts)
}

func TestRunOnceSkipsMalformedEmails(t *testing.T) {
	equipRepo := &fakeEquipmentRepo{records: []equipment.Record{
		{HolderName: "Ana", ExpiryDate: time.Date(2024, time.June, 2, 0, 0, 0, 0, time.UTC)},
	}}
	recipRepo := &fakeRecipientRepo{recipients: []recipient.Recipient{
		{Name: "Bob", Email: "b@x.com"},
		{Name: "Broken", Email: "not-an-email"},
	}}
	sender := &fakeSender{}
	s := newTestNotifier(equipRepo, recipRepo, sender)

	require.NoError(t, s.RunOnce(context.Background(), TriggerCron))
	assert.Equal(t, []string{"b@x.com"}, sender.sentTo())
}

func TestRunOnceScanFailureAbortsRun(t *testing.T) {
	scanErr := errors.New("connection refused")
	equipRepo := &fakeEquipmentRepo{err: scanErr}
	recipRepo := &fakeRecipientRepo{recipients: []recipient.Recipient{{Name: "Bob", Email: "b@x.com"}}}
	sender := &fakeSender{}
	s := newTestNotifier(equipRepo, recipRepo, sender)

	err := s.RunOnce(context.Background(), TriggerCron)

	require.Error(t, err)
	assert.ErrorIs(t, err, scanErr)
	assert.Empty(t, sender.attempts)
	assert.Zero(t, recipRepo.calls)
}

func TestRunOnceRecipientReadFailureAbortsRun(t *testing.T) {
	readErr := errors.New("query timeout")
	equipRepo := &fakeEquipmentRepo{records: []equipment.Record{
		{HolderName: "Ana", ExpiryDate: time.Date(2024, time.June, 2, 0, 0, 0, 0, time.UTC)},
	}}
	recipRepo := &fakeRecipientRepo{err: readErr}
	sender := &fakeSender{}
	s := newTestNotifier(equipRepo, recipRepo, sender)

	err := s.RunOnce(context.Background(), TriggerCron)

	require.Error(t, err)
	assert.ErrorIs(t, err, readErr)
	assert.Empty(t, sender.attempts)
}

func TestRunOnceIsolatesDeliveryFailures(t *testing.T) {
	equipRepo := &fakeEquipmentRepo{records: []equipment.Record{
		{HolderName: "Ana", ExpiryDate: time.Date(2024, time.June, 2, 0, 0, 0, 0, time.UTC)},
	}}
	recipRepo := &fakeRecipientRepo{recipients: []recipient.Recipient{
		{Name: "First", Email: "first@x.com"},
		{Name: "Second", Email: "second@x.com"},
		{Name: "Third", Email: "third@x.com"},
	}}
	sender := &fakeSender{failFor: map[string]error{"second@x.com": errors.New("mailbox full")}}
	s := newTestNotifier(equipRepo, recipRepo, sender)

	// One recipient failing must not fail the run or skip the others.
	require.NoError(t, s.RunOnce(context.Background(), TriggerCron))
	assert.ElementsMatch(t, []string{"first@x.com", "second@x.com", "third@x.com"}, sender.sentTo())
}

func TestDispatchRecordsPerRecipientOutcomes(t *testing.T) {
	sendErr := errors.New("blocked")
	sender := &fakeSender{failFor: map[string]error{"second@x.com": sendErr}}
	s := newTestNotifier(&fakeEquipmentRepo{}, &fakeRecipientRepo{}, sender)

	rep := buildTestReport()
	recipients := []recipient.Recipient{
		{Name: "First", Email: "first@x.com"},
		{Name: "Second", Email: "second@x.com"},
	}

	results, err := s.dispatch(context.Background(), rep, recipients)
	require.NoError(t, err)
	require.Len(t, results, 2)

	// Outcomes stay aligned with their recipients.
	assert.Equal(t, "first@x.com", results[0].Recipient.Email)
	assert.True(t, results[0].Succeeded())
	assert.Equal(t, "second@x.com", results[1].Recipient.Email)
	assert.ErrorIs(t, results[1].Err, sendErr)
}

func TestRunOnceEndToEnd(t *testing.T) {
	equipRepo := &fakeEquipmentRepo{records: []equipment.Record{
		{
			HolderName:      "Ana",
			RegistrationID:  "123",
			EquipmentName:   "Helmet",
			CertificationID: "CA-55",
			ExpiryDate:      time.Date(2024, time.June, 2, 0, 0, 0, 0, time.UTC),
		},
	}}
	recipRepo := &fakeRecipientRepo{recipients: []recipient.Recipient{{Name: "Bob", Email: "b@x.com"}}}
	sender := &fakeSender{}
	s := newTestNotifier(equipRepo, recipRepo, sender)

	require.NoError(t, s.RunOnce(context.Background(), TriggerCron))

	require.Len(t, sender.attempts, 1)
	got := sender.attempts[0]
	assert.Equal(t, "b@x.com", got.to)
	assert.Contains(t, got.subject, "June 2024")
	assert.Contains(t, got.body, "Ana")
	assert.Contains(t, got.body, "CA-55")
	assert.Contains(t, got.body, "EXPIRED")
}

func TestRunOnceAppliesSubjectPrefix(t *testing.T) {
	equipRepo := &fakeEquipmentRepo{records: []equipment.Record{
		{HolderName: "Ana", ExpiryDate: time.Date(2024, time.June, 2, 0, 0, 0, 0, time.UTC)},
	}}
	recipRepo := &fakeRecipientRepo{recipients: []recipient.Recipient{{Name: "Bob", Email: "b@x.com"}}}
	sender := &fakeSender{}
	s := newTestNotifier(equipRepo, recipRepo, sender)
	s.subjectPrefix = "[EPI]"

	require.NoError(t, s.RunOnce(context.Background(), TriggerCron))
	require.Len(t, sender.attempts, 1)
	assert.True(t, len(sender.attempts[0].subject) > 0)
	assert.Equal(t, "[EPI]", sender.attempts[0].subject[:5])
}
