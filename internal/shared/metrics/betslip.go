package metrics

import "github.com/prometheus/client_golang/prometheus"

// Betslip agrupa os contadores do betslip-service
type Betslip struct {
	Mutations  *prometheus.CounterVec // por operação
	Errors     *prometheus.CounterVec // por operação
	Placements *prometheus.CounterVec // por resultado
}

func NewBetslip(reg prometheus.Registerer) *Betslip {
	m := &Betslip{
		Mutations:  prometheus.NewCounterVec(prometheus.CounterOpts{Name: "betslip_mutations_total", Help: "mutações aplicadas no slip"}, []string{"op"}),
		Errors:     prometheus.NewCounterVec(prometheus.CounterOpts{Name: "betslip_errors_total", Help: "mutações rejeitadas ou não persistidas"}, []string{"op"}),
		Placements: prometheus.NewCounterVec(prometheus.CounterOpts{Name: "betslip_placements_total", Help: "envios de slip por resultado"}, []string{"outcome"}),
	}
	reg.MustRegister(m.Mutations, m.Errors, m.Placements)
	return m
}

// Worker agrupa os contadores do placement-worker
type Worker struct {
	Consumed  prometheus.Counter
	Persisted prometheus.Counter
	Errors    *prometheus.CounterVec // por estágio
}

func NewWorker(reg prometheus.Registerer) *Worker {
	m := &Worker{
		Consumed:  prometheus.NewCounter(prometheus.CounterOpts{Name: "placement_messages_consumed_total", Help: "mensagens consumidas"}),
		Persisted: prometheus.NewCounter(prometheus.CounterOpts{Name: "placement_slips_persisted_total", Help: "slips gravados no banco"}),
		Errors:    prometheus.NewCounterVec(prometheus.CounterOpts{Name: "placement_errors_total", Help: "erros por estágio"}, []string{"stage"}),
	}
	reg.MustRegister(m.Consumed, m.Persisted, m.Errors)
	return m
}
