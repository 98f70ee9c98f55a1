package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/inkwell"
	"github.com/agentstation/inkwell/cmd/inkwell/cmd/collection"
	"github.com/agentstation/inkwell/cmd/inkwell/cmd/refresh"
	"github.com/agentstation/inkwell/internal/server"
	"github.com/agentstation/inkwell/pkg/catalogs"
	"github.com/agentstation/inkwell/pkg/constants"
	"github.com/agentstation/inkwell/pkg/errors"
	"github.com/agentstation/inkwell/pkg/ledger"
	"github.com/agentstation/inkwell/pkg/logging"
	"github.com/agentstation/inkwell/pkg/query"
)

func testCatalogFS() fstest.MapFS {
	sets := `version: "test"
sets:
  - name: Mini Set
    code: MIN
    card_count: 10
    release_order: 1
  - name: Big Set
    code: BIG
    card_count: 200
    release_order: 2
`
	var cards strings.Builder
	cards.WriteString("set_name: Mini Set\nset_code: MIN\ncards:\n")
	for i := 1; i <= 10; i++ {
		typ, ink := "Character", "Ruby"
		if i%2 == 0 {
			typ, ink = "Action", "Sapphire"
		}
		fmt.Fprintf(&cards, "  - number: %d\n    name: Card %d\n    type: %s\n    ink: %s\n    rarity: Common\n    cost: %d\n", i, i, typ, ink, i)
	}

	return fstest.MapFS{
		catalogs.SetsFile: {Data: []byte(sets)},
		"cards/min.yaml":  {Data: []byte(cards.String())},
	}
}

// fakeLorcast serves two sets: MIN with a priced MIN-001 and an unknown NEW set.
func fakeLorcast(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /sets", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"results":[{"id":"s1","name":"Mini Set","code":"MIN"},{"id":"s2","name":"New Set","code":"NEW"}]}`))
	})
	mux.HandleFunc("GET /sets/MIN/cards", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"id":"c1","name":"Card 1","collector_number":"1","rarity":"Common",
			"set":{"id":"s1","code":"MIN","name":"Mini Set"},"prices":{"usd":"2.50","usd_foil":null}}]`))
	})
	mux.HandleFunc("GET /sets/NEW/cards", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"id":"c2","name":"Fresh Face","collector_number":"1","rarity":"Rare",
			"set":{"id":"s2","code":"NEW","name":"New Set"},"prices":{"usd":null,"usd_foil":null}}]`))
	})
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

type testApp struct {
	app *App
	out *bytes.Buffer
	cfg *Config
}

func newTestApp(t *testing.T, mutate func(*Config)) *testApp {
	t.Helper()

	cfg := &Config{
		LedgerDriver:      DriverYAML,
		LedgerPath:        filepath.Join(t.TempDir(), "collection.yaml"),
		RemoteURL:         "http://127.0.0.1:1",
		RemoteConcurrency: 2,
		RefreshTimeout:    5 * time.Second,
		RefreshInterval:   constants.DefaultRefreshInterval,
		FreshnessWindow:   constants.DefaultFreshnessWindow,
		Server:            server.DefaultConfig(),
		LogOutput:         "discard",
	}
	if mutate != nil {
		mutate(cfg)
	}

	var out bytes.Buffer
	a, err := New("1.2.3", "abc123", "2026-01-01", "test",
		WithConfig(cfg),
		WithLogger(logging.NewNopLogger()),
		WithOutput(&out),
		WithClientOptions(inkwell.WithCatalogFS(testCatalogFS())),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Shutdown(context.Background()) })
	return &testApp{app: a, out: &out, cfg: cfg}
}

func (ta *testApp) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	ta.out.Reset()
	err := ta.app.Execute(context.Background(), args)
	return ta.out.String(), err
}

func runJSON[T any](t *testing.T, ta *testApp, args ...string) T {
	t.Helper()
	full := append([]string{args[0], "-o", "json"}, args[1:]...)
	out, err := ta.run(t, full...)
	require.NoError(t, err)
	var v T
	require.NoError(t, json.Unmarshal([]byte(out), &v), out)
	return v
}

func TestApp_New(t *testing.T) {
	ta := newTestApp(t, nil)
	assert.Equal(t, "1.2.3", ta.app.Version())
	assert.Equal(t, "abc123", ta.app.Commit())
	assert.Equal(t, "2026-01-01", ta.app.Date())
	assert.Equal(t, "test", ta.app.BuiltBy())
	assert.NotNil(t, ta.app.Logger())
	assert.Same(t, ta.cfg, ta.app.Config())
	assert.Equal(t, ta.cfg.RemoteURL, ta.app.RemoteURL())
}

func TestApp_ClientSingleton(t *testing.T) {
	ta := newTestApp(t, nil)
	c1, err := ta.app.Client()
	require.NoError(t, err)
	c2, err := ta.app.Client()
	require.NoError(t, err)
	assert.Same(t, c1, c2)
}

func TestVersionCommand(t *testing.T) {
	ta := newTestApp(t, nil)
	out, err := ta.run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "inkwell 1.2.3\n", out)

	out, err = ta.run(t, "version", "-v")
	require.NoError(t, err)
	assert.Contains(t, out, "commit:   abc123")
}

func TestOutputFlagValidation(t *testing.T) {
	ta := newTestApp(t, nil)
	_, err := ta.run(t, "sets", "-o", "xml")
	assert.True(t, errors.IsValidationError(err))
}

func TestSetsCommand(t *testing.T) {
	ta := newTestApp(t, nil)
	sets := runJSON[[]catalogs.Set](t, ta, "sets")
	require.Len(t, sets, 2)
	assert.Equal(t, "Mini Set", sets[0].Name)

	out, err := ta.run(t, "sets", "-o", "table")
	require.NoError(t, err)
	assert.Contains(t, out, "Big Set")
}

func TestOwnAndProgress(t *testing.T) {
	ta := newTestApp(t, nil)

	entry := runJSON[ledger.Entry](t, ta, "own", "MIN-001", "2")
	assert.Equal(t, 2, entry.Quantity)

	entry = runJSON[ledger.Entry](t, ta, "own", "MIN-001", "+1")
	assert.Equal(t, 3, entry.Quantity)

	entry = runJSON[ledger.Entry](t, ta, "own", "MIN-001", "--", "-5")
	assert.Equal(t, 0, entry.Quantity)

	runJSON[ledger.Entry](t, ta, "own", "MIN-002", "1")
	runJSON[ledger.Entry](t, ta, "own", "MIN-003", "4")

	report := runJSON[collection.Report](t, ta, "progress", "Mini Set")
	require.Len(t, report.Sets, 1)
	assert.Equal(t, 2, report.Sets[0].Collected)
	assert.Equal(t, 10, report.Sets[0].Total)
	assert.InDelta(t, 20.0, report.Sets[0].Percentage, 0.001)
	assert.Nil(t, report.Overall)

	report = runJSON[collection.Report](t, ta, "progress", "Mini Set", "--total", "4")
	assert.Equal(t, 4, report.Sets[0].Total)

	report = runJSON[collection.Report](t, ta, "progress")
	assert.Len(t, report.Sets, 2)
	require.NotNil(t, report.Overall)
	assert.Equal(t, 210, report.Overall.Total)

	// the ledger is written through to disk
	_, err := os.Stat(ta.cfg.LedgerPath)
	assert.NoError(t, err)
}

func TestOwnDeclaredSlotAcrossRestarts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "collection.yaml")
	setPath := func(c *Config) { c.LedgerPath = path }

	ta := newTestApp(t, setPath)
	entry := runJSON[ledger.Entry](t, ta, "own", "BIG-001", "2")
	assert.Equal(t, 2, entry.Quantity)
	require.NoError(t, ta.app.Shutdown(context.Background()))

	ta = newTestApp(t, setPath)
	report := runJSON[collection.Report](t, ta, "progress", "Big Set")
	require.Len(t, report.Sets, 1)
	assert.Equal(t, 1, report.Sets[0].Collected)
	assert.Equal(t, 200, report.Sets[0].Total)

	entry = runJSON[ledger.Entry](t, ta, "own", "BIG-001", "0")
	assert.Equal(t, 0, entry.Quantity)
}

func TestOwnErrors(t *testing.T) {
	ta := newTestApp(t, nil)

	_, err := ta.run(t, "own", "NOPE-001", "1")
	assert.True(t, errors.IsNotFound(err), "got %v", err)

	_, err = ta.run(t, "own", "MIN-001", "two")
	assert.True(t, errors.IsValidationError(err), "got %v", err)

	_, err = ta.run(t, "progress", "Unknown Set")
	assert.True(t, errors.IsNotFound(err), "got %v", err)
}

func TestWishAndWishlist(t *testing.T) {
	ta := newTestApp(t, nil)

	entry := runJSON[ledger.Entry](t, ta, "wish", "MIN-002")
	assert.True(t, entry.Wishlisted)

	items := runJSON[[]query.Item](t, ta, "wishlist")
	require.Len(t, items, 1)
	assert.Equal(t, "MIN-002", items[0].Card.ID)

	entry = runJSON[ledger.Entry](t, ta, "wish", "MIN-002", "--on")
	assert.True(t, entry.Wishlisted)

	entry = runJSON[ledger.Entry](t, ta, "wish", "MIN-002")
	assert.False(t, entry.Wishlisted)

	_, err := ta.run(t, "wish", "MIN-002", "--on", "--off")
	assert.Error(t, err)
}

func TestCardsCommand(t *testing.T) {
	ta := newTestApp(t, nil)

	t.Run("ink filter", func(t *testing.T) {
		items := runJSON[[]query.Item](t, ta, "cards", "--ink", "ruby")
		assert.Len(t, items, 5)
	})

	t.Run("type and cost", func(t *testing.T) {
		items := runJSON[[]query.Item](t, ta, "cards", "--type", "action", "--max-cost", "4", "--sort", "cost")
		require.Len(t, items, 2)
		assert.Equal(t, "MIN-002", items[0].Card.ID)
		assert.Equal(t, "MIN-004", items[1].Card.ID)
	})

	t.Run("limit", func(t *testing.T) {
		items := runJSON[[]query.Item](t, ta, "cards", "--limit", "3")
		assert.Len(t, items, 3)
	})

	t.Run("collection scope", func(t *testing.T) {
		runJSON[ledger.Entry](t, ta, "own", "MIN-005", "1")
		items := runJSON[[]query.Item](t, ta, "cards", "--scope", "collection")
		require.Len(t, items, 1)
		assert.Equal(t, 1, items[0].Quantity)
	})

	t.Run("one card", func(t *testing.T) {
		item := runJSON[query.Item](t, ta, "cards", "MIN-005")
		assert.Equal(t, "Card 5", item.Card.Name)
		assert.Equal(t, 1, item.Quantity)
	})

	t.Run("invalid filters", func(t *testing.T) {
		for _, args := range [][]string{
			{"cards", "--rarity", "mythic"},
			{"cards", "--ink", "purple"},
			{"cards", "--scope", "everything"},
			{"cards", "--sort", "price"},
		} {
			_, err := ta.run(t, args...)
			assert.True(t, errors.IsValidationError(err), "%v: %v", args, err)
		}
	})
}

func TestSearchCommand(t *testing.T) {
	ta := newTestApp(t, nil)

	items := runJSON[[]query.Item](t, ta, "search", "card", "1")
	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.Card.ID)
	}
	assert.ElementsMatch(t, []string{"MIN-001", "MIN-010"}, ids)

	items = runJSON[[]query.Item](t, ta, "search", "--fuzzy", "cd7")
	require.Len(t, items, 1)
	assert.Equal(t, "MIN-007", items[0].Card.ID)

	_, err := ta.run(t, "search")
	assert.Error(t, err)
}

func TestRefreshAndCheckUpdates(t *testing.T) {
	remote := fakeLorcast(t)
	ta := newTestApp(t, func(c *Config) {
		c.RemoteURL = remote.URL
		c.Premium = true
	})

	summary := runJSON[catalogs.MergeSummary](t, ta, "refresh")
	assert.GreaterOrEqual(t, summary.Updated, 1)
	assert.Contains(t, summary.NewSets, "New Set")

	card := runJSON[query.Item](t, ta, "cards", "MIN-001")
	require.NotNil(t, card.Card.Price)
	require.NotNil(t, card.Card.Price.USD)
	assert.InDelta(t, 2.5, *card.Card.Price.USD, 0.001)

	out, err := ta.run(t, "check-updates", "-o", "table")
	require.NoError(t, err)
	assert.Contains(t, out, "Card Data Update Check")
	assert.Contains(t, out, "New Set")

	result := runJSON[refresh.CheckResult](t, ta, "check-updates")
	assert.True(t, result.HasUpdates)
}

func TestPricesHiddenWithoutPremium(t *testing.T) {
	remote := fakeLorcast(t)
	ta := newTestApp(t, func(c *Config) { c.RemoteURL = remote.URL })

	runJSON[catalogs.MergeSummary](t, ta, "refresh")

	card := runJSON[query.Item](t, ta, "cards", "MIN-001")
	assert.Nil(t, card.Card.Price)

	out, err := ta.run(t, "cards", "--set", "Mini Set", "-o", "table")
	require.NoError(t, err)
	assert.NotContains(t, out, "$2.50")
}

func TestRefreshFailure(t *testing.T) {
	remote := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(remote.Close)
	ta := newTestApp(t, func(c *Config) { c.RemoteURL = remote.URL })

	_, err := ta.run(t, "refresh")
	require.Error(t, err)

	// the bundled catalog is untouched
	items := runJSON[[]query.Item](t, ta, "cards")
	assert.Len(t, items, 10)
}

func TestSQLiteLedger(t *testing.T) {
	ta := newTestApp(t, func(c *Config) {
		c.LedgerDriver = DriverSQLite
		c.LedgerPath = filepath.Join(t.TempDir(), "collection.db")
	})

	runJSON[ledger.Entry](t, ta, "own", "MIN-004", "2")
	require.NoError(t, ta.app.Shutdown(context.Background()))

	// a fresh client reads the ledger back
	report := runJSON[collection.Report](t, ta, "progress", "Mini Set")
	assert.Equal(t, 1, report.Sets[0].Collected)
}

func TestCorruptLedgerDoesNotBlockStartup(t *testing.T) {
	for _, driver := range []string{DriverYAML, DriverSQLite} {
		t.Run(driver, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "collection."+driver)
			require.NoError(t, os.WriteFile(path, bytes.Repeat([]byte("{[garbage"), 200), 0o600))

			ta := newTestApp(t, func(c *Config) {
				c.LedgerDriver = driver
				c.LedgerPath = path
			})

			report := runJSON[collection.Report](t, ta, "progress", "Mini Set")
			assert.Equal(t, 0, report.Sets[0].Collected)

			entry := runJSON[ledger.Entry](t, ta, "own", "MIN-004", "2")
			assert.Equal(t, 2, entry.Quantity)
		})
	}
}

func TestRemoteAPIKey(t *testing.T) {
	tests := []struct {
		name   string
		scheme string
		check  func(t *testing.T, r *http.Request)
	}{
		{name: "bearer", scheme: "bearer", check: func(t *testing.T, r *http.Request) {
			assert.Equal(t, "Bearer mirror-key", r.Header.Get("Authorization"))
		}},
		{name: "header", scheme: "header:X-Mirror-Key", check: func(t *testing.T, r *http.Request) {
			assert.Equal(t, "mirror-key", r.Header.Get("X-Mirror-Key"))
		}},
		{name: "query", scheme: "query:key", check: func(t *testing.T, r *http.Request) {
			assert.Equal(t, "mirror-key", r.URL.Query().Get("key"))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			upstream := fakeLorcast(t)
			var (
				mu   sync.Mutex
				seen []*http.Request
			)
			mirror := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				mu.Lock()
				seen = append(seen, r.Clone(context.Background()))
				mu.Unlock()
				upstream.Config.Handler.ServeHTTP(w, r)
			}))
			t.Cleanup(mirror.Close)

			ta := newTestApp(t, func(c *Config) {
				c.RemoteURL = mirror.URL
				c.RemoteAuth = tt.scheme
				c.RemoteAPIKey = "mirror-key"
			})
			runJSON[catalogs.MergeSummary](t, ta, "refresh")

			mu.Lock()
			defer mu.Unlock()
			require.NotEmpty(t, seen)
			for _, r := range seen {
				tt.check(t, r)
			}
		})
	}
}
