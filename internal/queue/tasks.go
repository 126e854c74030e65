package queue

import "encoding/json"

const (
	TaskVerificationEmail = "verification_email"
	TaskOrderConfirmation = "order_confirmation"
)

// Task is the JSON envelope carried on the notifications topic. Delivery is
// at-least-once; handlers must tolerate replays.
type Task struct {
	Type    string `json:"type"`
	UserID  int    `json:"user_id,omitempty"`
	OrderID string `json:"order_id,omitempty"`
}

func (t Task) Key() []byte {
	if t.OrderID != "" {
		return []byte(t.OrderID)
	}
	return []byte(t.Type)
}

func (t Task) Marshal() ([]byte, error) {
	return json.Marshal(t)
}

func UnmarshalTask(data []byte) (Task, error) {
	var t Task
	err := json.Unmarshal(data, &t)
	return t, err
}
