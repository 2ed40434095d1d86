package scheduler

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"papex_backend/internal/events"
	"papex_backend/internal/leads/lifecycle"
	"papex_backend/internal/notification"
	"papex_backend/platform/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	url string
}

func (c testConfig) GetRedisURL() string       { return c.url }
func (c testConfig) GetRedisTLSInsecure() bool { return false }
func (c testConfig) GetAsynqQueueName() string { return "papex" }
func (c testConfig) GetAsynqConcurrency() int  { return 2 }
func (c testConfig) GetReminderCron() string   { return "" }
func (c testConfig) GetAbsenceCron() string    { return "" }
func (c testConfig) GetTimezone() string       { return "Europe/Paris" }

func TestClientEnqueuesOnConfiguredQueue(t *testing.T) {
	mr := miniredis.RunT(t)
	c, err := NewClient(testConfig{url: "redis://" + mr.Addr()})
	require.NoError(t, err)
	defer c.Close()

	ctx := context.Background()
	msg := notification.Message{Kind: notification.KindConfirmation, Channel: notification.ChannelSMS, Lead: events.LeadSnapshot{ID: 4, Phone: "+33612345678"}}
	require.NoError(t, c.EnqueueNotification(ctx, msg))
	require.NoError(t, c.EnqueueClick2Call(ctx, "+33612345678"))

	pending, err := mr.List("asynq:{papex}:pending")
	require.NoError(t, err)
	assert.Len(t, pending, 2)
}

func TestNilClientRefusesToEnqueue(t *testing.T) {
	var c *Client
	err := c.EnqueueNotification(context.Background(), notification.Message{Kind: notification.KindReminder, Channel: notification.ChannelEmail})
	assert.Error(t, err)
}

func TestNotificationTaskTypeFollowsChannel(t *testing.T) {
	task, err := NewNotificationTask(notification.Message{Kind: notification.KindReminder, Channel: notification.ChannelSMS})
	require.NoError(t, err)
	assert.Equal(t, TaskNotifySMS, task.Type())

	task, err = NewNotificationTask(notification.Message{Kind: notification.KindReminder, Channel: notification.ChannelEmail})
	require.NoError(t, err)
	assert.Equal(t, TaskNotifyEmail, task.Type())

	msg, err := ParseNotificationPayload(task)
	require.NoError(t, err)
	assert.Equal(t, notification.KindReminder, msg.Kind)
}

type failingDeliverer struct {
	calls int
}

func (d *failingDeliverer) Deliver(context.Context, notification.Message) error {
	d.calls++
	return errors.New("smtp timeout")
}

type flakyCaller struct {
	err    error
	number string
}

func (c *flakyCaller) Click2Call(_ context.Context, number string) error {
	c.number = number
	return c.err
}

type recordingRunner struct {
	reminders time.Time
	absences  time.Time
}

func (r *recordingRunner) SendReminders(_ context.Context, now time.Time) (lifecycle.Result, error) {
	r.reminders = now
	return lifecycle.Result{}, nil
}

func (r *recordingRunner) MarkAbsent(_ context.Context, now time.Time) (lifecycle.Result, error) {
	r.absences = now
	return lifecycle.Result{}, nil
}

func newTestHandlers(d Deliverer, c Caller, r LifecycleRunner) *Handlers {
	h := NewHandlers(d, c, r, logger.NewWithWriter("production", io.Discard))
	h.now = func() time.Time { return time.Date(2026, 1, 20, 8, 0, 0, 0, time.UTC) }
	return h
}

func TestNotificationHandlerAbsorbsErrors(t *testing.T) {
	d := &failingDeliverer{}
	h := newTestHandlers(d, &flakyCaller{}, &recordingRunner{})

	task, err := NewNotificationTask(notification.Message{Kind: notification.KindConfirmation, Channel: notification.ChannelEmail})
	require.NoError(t, err)
	assert.NoError(t, h.handleNotification(context.Background(), task))
	assert.Equal(t, 1, d.calls)

	assert.NoError(t, h.handleNotification(context.Background(), asynq.NewTask(TaskNotifyEmail, []byte("{"))))
}

func TestClick2CallHandlerReturnsErrorsForRetry(t *testing.T) {
	c := &flakyCaller{err: errors.New("ovh 503")}
	h := newTestHandlers(&failingDeliverer{}, c, &recordingRunner{})

	task, err := NewClick2CallTask(Click2CallPayload{PhoneNumber: "+33612345678"})
	require.NoError(t, err)
	assert.Error(t, h.handleClick2Call(context.Background(), task))
	assert.Equal(t, "+33612345678", c.number)

	err = h.handleClick2Call(context.Background(), asynq.NewTask(TaskClick2Call, []byte("nope")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestLifecycleHandlersUseProcessingTime(t *testing.T) {
	r := &recordingRunner{}
	h := newTestHandlers(&failingDeliverer{}, &flakyCaller{}, r)

	require.NoError(t, h.handleSendReminders(context.Background(), NewSendRemindersTask()))
	require.NoError(t, h.handleMarkAbsent(context.Background(), NewMarkAbsentTask()))
	assert.Equal(t, h.now(), r.reminders)
	assert.Equal(t, h.now(), r.absences)
}

func TestNewPeriodicRegistersDefaultSchedules(t *testing.T) {
	mr := miniredis.RunT(t)
	p, err := NewPeriodic(testConfig{url: "redis://" + mr.Addr()}, logger.NewWithWriter("production", io.Discard))
	require.NoError(t, err)
	require.NotNil(t, p)
}

func TestCronOr(t *testing.T) {
	assert.Equal(t, "0 9 * * *", cronOr("", defaultReminderCron))
	assert.Equal(t, "15 8 * * 1-5", cronOr("15 8 * * 1-5", defaultReminderCron))
}
