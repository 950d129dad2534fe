// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// サービス層から利用する。
type MetricsCollector interface {
	RecordMessageCreated(color string)
	RecordMessageDeleted()
	RecordDeleteDenied()
	RecordDisclosure(reason string)
	RecordTreeCreated()
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	messagesCreated *prometheus.CounterVec
	messagesDeleted prometheus.Counter
	deletesDenied   prometheus.Counter
	disclosures     *prometheus.CounterVec
	treesCreated    prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		messagesCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "decomytree_messages_created_total",
			Help: "作成されたオーナメントメッセージの合計数（色別）",
		}, []string{"color"}),
		messagesDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "decomytree_messages_deleted_total",
			Help: "所有者によって削除されたメッセージの合計数",
		}),
		deletesDenied: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "decomytree_deletes_denied_total",
			Help: "認可エラーで拒否された削除リクエストの合計数",
		}),
		disclosures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "decomytree_disclosures_total",
			Help: "可視性判定の実行回数（秘匿理由別）",
		}, []string{"reason"}),
		treesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "decomytree_trees_created_total",
			Help: "作成されたツリーの合計数",
		}),
	}

	reg.MustRegister(
		c.messagesCreated,
		c.messagesDeleted,
		c.deletesDenied,
		c.disclosures,
		c.treesCreated,
	)

	return c
}

// RecordMessageCreated はメッセージ作成を記録する。
func (c *Collector) RecordMessageCreated(color string) {
	c.messagesCreated.WithLabelValues(color).Inc()
}

// RecordMessageDeleted はメッセージ削除を記録する。
func (c *Collector) RecordMessageDeleted() {
	c.messagesDeleted.Inc()
}

// RecordDeleteDenied は削除リクエストの認可拒否を記録する。
func (c *Collector) RecordDeleteDenied() {
	c.deletesDenied.Inc()
}

// RecordDisclosure は可視性判定の実行を記録する。
func (c *Collector) RecordDisclosure(reason string) {
	c.disclosures.WithLabelValues(reason).Inc()
}

// RecordTreeCreated はツリー作成を記録する。
func (c *Collector) RecordTreeCreated() {
	c.treesCreated.Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// NopCollector は何も記録しないコレクター。テストおよびメトリクス無効時用。
type NopCollector struct{}

// RecordMessageCreated は何もしない。
func (NopCollector) RecordMessageCreated(color string) {}

// RecordMessageDeleted は何もしない。
func (NopCollector) RecordMessageDeleted() {}

// RecordDeleteDenied は何もしない。
func (NopCollector) RecordDeleteDenied() {}

// RecordDisclosure は何もしない。
func (NopCollector) RecordDisclosure(reason string) {}

// RecordTreeCreated は何もしない。
func (NopCollector) RecordTreeCreated() {}

// compile-time interface checks
var (
	_ MetricsCollector = (*Collector)(nil)
	_ MetricsCollector = NopCollector{}
)
