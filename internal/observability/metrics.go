package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	TasksCreated        prometheus.Counter
	ModerationDecisions *prometheus.CounterVec
	UpdatesProcessed    prometheus.Counter
	IntakeCompleted     prometheus.Counter
	IntakeCancelled     prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		TasksCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "workers_tasks_created_total",
			Help: "Tasks accepted into moderation queue.",
		}),
		ModerationDecisions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "workers_moderation_decisions_total",
			Help: "Moderation outcomes by resulting status.",
		}, []string{"decision"}),
		UpdatesProcessed: f.NewCounter(prometheus.CounterOpts{
			Name: "workers_bot_updates_total",
			Help: "Telegram updates handled by the bot.",
		}),
		IntakeCompleted: f.NewCounter(prometheus.CounterOpts{
			Name: "workers_intake_completed_total",
			Help: "Create-task dialogues that reached submission.",
		}),
		IntakeCancelled: f.NewCounter(prometheus.CounterOpts{
			Name: "workers_intake_cancelled_total",
			Help: "Create-task dialogues cancelled before submission.",
		}),
	}
}
