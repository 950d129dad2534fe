package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

// コレクターが登録され、記録した値がスクレイプ出力に現れることを検証
func TestCollector_RecordsAndExposes(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordMessageCreated("gold")
	c.RecordMessageCreated("gold")
	c.RecordMessageDeleted()
	c.RecordDeleteDenied()
	c.RecordDisclosure("NOT_OWNER")
	c.RecordTreeCreated()

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	Handler(reg).ServeHTTP(w, req)

	body := w.Body.String()
	expects := []string{
		`decomytree_messages_created_total{color="gold"} 2`,
		`decomytree_messages_deleted_total 1`,
		`decomytree_deletes_denied_total 1`,
		`decomytree_disclosures_total{reason="NOT_OWNER"} 1`,
		`decomytree_trees_created_total 1`,
	}
	for _, want := range expects {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

// 二重登録でpanicすることを検証（MustRegisterの契約）
func TestNewCollector_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewCollector(reg)

	defer func() {
		if recover() == nil {
			t.Error("expected panic on duplicate registration")
		}
	}()
	NewCollector(reg)
}
