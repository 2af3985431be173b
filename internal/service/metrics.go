package service

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	sessionsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "battleship_sessions_created_total",
			Help: "Total game sessions opened",
		},
	)
	sessionsFinished = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "battleship_sessions_finished_total",
			Help: "Total game sessions played to the end",
		},
	)
	shotsFired = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "battleship_shots_fired_total",
			Help: "Total shots fired",
		},
	)
	shotsResolved = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "battleship_shots_resolved_total",
			Help: "Total shots resolved, by reported result",
		},
		[]string{"result"},
	)
	revealsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "battleship_reveals_total",
			Help: "Total board reveal attempts, by verdict",
		},
		[]string{"verdict"},
	)
)

func init() {
	prometheus.MustRegister(sessionsCreated)
	prometheus.MustRegister(sessionsFinished)
	prometheus.MustRegister(shotsFired)
	prometheus.MustRegister(shotsResolved)
	prometheus.MustRegister(revealsTotal)
}
