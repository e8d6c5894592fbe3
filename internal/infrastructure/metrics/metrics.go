package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// CommissionMetrics содержит все метрики леджера и заявок
type CommissionMetrics struct {
	// Заявки
	RequestsSubmittedTotal       *prometheus.CounterVec
	RequestsSubmittedAmountTotal *prometheus.CounterVec
	RequestsResolvedTotal        *prometheus.CounterVec
	RequestsResolvedAmountTotal  *prometheus.CounterVec
	RequestResolutionDuration    *prometheus.HistogramVec
	RequestsOpen                 *prometheus.GaugeVec

	// Отказы на этапе допуска
	EligibilityRejectedTotal *prometheus.CounterVec

	// Атрибуция
	RevenueEventsTotal         *prometheus.CounterVec
	RevenueEventsReplayedTotal *prometheus.CounterVec
	LedgerCreditedAmountTotal  *prometheus.CounterVec

	// Целостность
	LedgerIntegrityViolationsTotal *prometheus.CounterVec

	// Ошибки
	ErrorsTotal *prometheus.CounterVec
}

// NewCommissionMetrics регистрирует метрики в reg; nil - глобальный регистр
func NewCommissionMetrics(reg prometheus.Registerer) *CommissionMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &CommissionMetrics{
		RequestsSubmittedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "commission_requests_submitted_total",
				Help: "Количество поданных заявок",
			},
			[]string{"kind", "category"},
		),

		RequestsSubmittedAmountTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "commission_requests_submitted_amount_total",
				Help: "Сумма поданных заявок",
			},
			[]string{"kind", "category"},
		),

		RequestsResolvedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "commission_requests_resolved_total",
				Help: "Количество решений по заявкам (accepted/declined/deferred)",
			},
			[]string{"kind", "status"},
		),

		RequestsResolvedAmountTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "commission_requests_resolved_amount_total",
				Help: "Сумма заявок по итоговому статусу",
			},
			[]string{"kind", "status"},
		),

		RequestResolutionDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "commission_request_resolution_duration_seconds",
				Help:    "Время от подачи до решения заявки",
				Buckets: prometheus.ExponentialBuckets(60, 4, 10), // 1m, 4m, 16m...
			},
			[]string{"kind", "status"},
		),

		RequestsOpen: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "commission_requests_open",
				Help: "Заявки в статусе pending/deferred",
			},
			[]string{"kind"},
		),

		EligibilityRejectedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "commission_eligibility_rejected_total",
				Help: "Отклоненные на этапе допуска заявки",
			},
			[]string{"category", "code"},
		),

		RevenueEventsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "commission_revenue_events_total",
				Help: "Обработанные события выручки",
			},
			[]string{"type"},
		),

		RevenueEventsReplayedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "commission_revenue_events_replayed_total",
				Help: "Повторно полученные события выручки (без начисления)",
			},
			[]string{"type"},
		),

		LedgerCreditedAmountTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "commission_ledger_credited_amount_total",
				Help: "Начислено в леджер по категориям",
			},
			[]string{"category"},
		),

		LedgerIntegrityViolationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "commission_ledger_integrity_violations_total",
				Help: "Обнаруженные нарушения инварианта unpaid >= 0",
			},
			[]string{"category"},
		),

		ErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "commission_errors_total",
				Help: "Ошибки операций",
			},
			[]string{"operation", "code"},
		),
	}
}

// RecordRequestSubmitted записывает поданную заявку
func (m *CommissionMetrics) RecordRequestSubmitted(kind, category string, amount float64) {
	m.RequestsSubmittedTotal.WithLabelValues(kind, category).Inc()
	m.RequestsSubmittedAmountTotal.WithLabelValues(kind, category).Add(amount)
	m.RequestsOpen.WithLabelValues(kind).Inc()
}

// RecordRequestResolved записывает решение по заявке. Отложенная заявка остается открытой
func (m *CommissionMetrics) RecordRequestResolved(kind, status string, amount, durationSeconds float64) {
	m.RequestsResolvedTotal.WithLabelValues(kind, status).Inc()
	m.RequestsResolvedAmountTotal.WithLabelValues(kind, status).Add(amount)
	if status == "accepted" || status == "declined" {
		m.RequestsOpen.WithLabelValues(kind).Dec()
		m.RequestResolutionDuration.WithLabelValues(kind, status).Observe(durationSeconds)
	}
}

func (m *CommissionMetrics) RecordEligibilityRejected(category, code string) {
	m.EligibilityRejectedTotal.WithLabelValues(category, code).Inc()
}

func (m *CommissionMetrics) RecordRevenueEvent(eventType string, replayed bool) {
	m.RevenueEventsTotal.WithLabelValues(eventType).Inc()
	if replayed {
		m.RevenueEventsReplayedTotal.WithLabelValues(eventType).Inc()
	}
}

func (m *CommissionMetrics) RecordCredited(category string, amount float64) {
	m.LedgerCreditedAmountTotal.WithLabelValues(category).Add(amount)
}

func (m *CommissionMetrics) RecordIntegrityViolation(category string) {
	m.LedgerIntegrityViolationsTotal.WithLabelValues(category).Inc()
}

// RecordError записывает ошибку
func (m *CommissionMetrics) RecordError(operation, code string) {
	m.ErrorsTotal.WithLabelValues(operation, code).Inc()
}
