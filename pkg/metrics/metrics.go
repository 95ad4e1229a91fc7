package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MessagesSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pulsechat_messages_sent_total",
		Help: "Number of messages accepted and fanned out.",
	})

	MessagesRead = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pulsechat_message_statuses_read_total",
		Help: "Number of message status rows transitioned to read.",
	})

	ChatsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pulsechat_chats_created_total",
		Help: "Number of chats created (deduplicated direct-chat hits excluded).",
	})

	StoriesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pulsechat_stories_created_total",
		Help: "Number of stories posted.",
	})

	StoriesExpired = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pulsechat_stories_expired_total",
		Help: "Number of stories removed by the expiry sweep.",
	})

	RealtimeClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pulsechat_realtime_clients",
		Help: "Currently connected websocket clients.",
	})
)
