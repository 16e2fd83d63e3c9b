package events

import (
	"context"
	"encoding/json"

	"lingua_edu_backend/internal/model"
	"lingua_edu_backend/internal/util"
)

// Publisher *nats.Conn 满足该接口
type Publisher interface {
	Publish(subject string, data []byte) error
}

// NATSSink 把通知发布到 lingua.notify.<kind>
type NATSSink struct {
	Pub Publisher
}

func (NATSSink) Name() string { return "nats" }

func (s NATSSink) Deliver(_ context.Context, n model.Notification) error {
	data, err := json.Marshal(n)
	if err != nil {
		return err
	}
	return s.Pub.Publish(util.SubjectNotifyPrefix+string(n.Kind), data)
}
