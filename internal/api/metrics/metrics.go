package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ForecastRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "campus_forecast_runs_total",
		Help: "Forecast runs served, by model.",
	}, []string{"model"})

	ScheduleRuns = promauto.NewCounter(prometheus.CounterOpts{
		Name: "campus_battery_schedule_runs_total",
		Help: "Battery schedule optimizations served.",
	})

	TimetableRuns = promauto.NewCounter(prometheus.CounterOpts{
		Name: "campus_timetable_runs_total",
		Help: "Timetable solves served.",
	})

	RequestErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "campus_request_errors_total",
		Help: "Request errors, by error code.",
	}, []string{"code"})
)
