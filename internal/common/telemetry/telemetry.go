// File path: internal/common/telemetry/telemetry.go
package telemetry

import (
	"expvar"
	"sync"
	"time"
)

var (
	initOnce sync.Once

	chatTurnsTotal    *expvar.Int
	chatFailuresTotal *expvar.Int
	chatLatencyMS     *expvar.Int

	renderTotal     *expvar.Int
	renderLatencyMS *expvar.Int

	dispatchTotal    *expvar.Map
	dispatchFailures *expvar.Map
	dispatchLatency  *expvar.Map
)

func ensureInit() {
	initOnce.Do(func() {
		chatTurnsTotal = expvar.NewInt("intake_chat_turns_total")
		chatFailuresTotal = expvar.NewInt("intake_chat_failures_total")
		chatLatencyMS = expvar.NewInt("intake_chat_latency_ms")

		renderTotal = expvar.NewInt("intake_render_total")
		renderLatencyMS = expvar.NewInt("intake_render_latency_ms")

		dispatchTotal = expvar.NewMap("intake_dispatch_total")
		dispatchFailures = expvar.NewMap("intake_dispatch_failures_total")
		dispatchLatency = expvar.NewMap("intake_dispatch_latency_ms")
	})
}

// RecordChatTurn accounts one orchestrated chat turn.
func RecordChatTurn(duration time.Duration, err error) {
	ensureInit()
	chatTurnsTotal.Add(1)
	chatLatencyMS.Add(duration.Milliseconds())
	if err != nil {
		chatFailuresTotal.Add(1)
	}
}

// RecordRender accounts one document render.
func RecordRender(duration time.Duration) {
	ensureInit()
	renderTotal.Add(1)
	renderLatencyMS.Add(duration.Milliseconds())
}

// RecordDispatch accounts one email dispatch attempt, keyed by kind
// ("requirements" or "contact").
func RecordDispatch(kind string, duration time.Duration, err error) {
	ensureInit()
	dispatchTotal.Add(kind, 1)
	dispatchLatency.Add(kind, duration.Milliseconds())
	if err != nil {
		dispatchFailures.Add(kind, 1)
	}
}
