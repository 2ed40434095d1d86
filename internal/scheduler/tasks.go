package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"

	"papex_backend/internal/notification"
)

const (
	TaskNotifyEmail   = "notify:email"
	TaskNotifySMS     = "notify:sms"
	TaskClick2Call    = "telephony:click2call"
	TaskSendReminders = "leads:send_reminders"
	TaskMarkAbsent    = "leads:mark_absent"
)

// click2CallMaxRetry is the number of retries for a failed call launch.
const click2CallMaxRetry = 3

type Click2CallPayload struct {
	PhoneNumber string `json:"phoneNumber"`
}

// NewNotificationTask picks the task type from the message channel.
func NewNotificationTask(msg notification.Message) (*asynq.Task, error) {
	data, err := msg.Marshal()
	if err != nil {
		return nil, err
	}
	taskType := TaskNotifyEmail
	if msg.Channel == notification.ChannelSMS {
		taskType = TaskNotifySMS
	}
	return asynq.NewTask(taskType, data, asynq.MaxRetry(0)), nil
}

func ParseNotificationPayload(task *asynq.Task) (notification.Message, error) {
	return notification.ParseMessage(task.Payload())
}

func NewClick2CallTask(payload Click2CallPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskClick2Call, data, asynq.MaxRetry(click2CallMaxRetry)), nil
}

func ParseClick2CallPayload(task *asynq.Task) (Click2CallPayload, error) {
	var payload Click2CallPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return Click2CallPayload{}, err
	}
	return payload, nil
}

// NewSendRemindersTask and NewMarkAbsentTask carry no payload; the worker
// uses the processing time as "now".
func NewSendRemindersTask() *asynq.Task {
	return asynq.NewTask(TaskSendReminders, nil, asynq.MaxRetry(1))
}

func NewMarkAbsentTask() *asynq.Task {
	return asynq.NewTask(TaskMarkAbsent, nil, asynq.MaxRetry(1))
}
