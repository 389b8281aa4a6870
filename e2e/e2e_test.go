package e2e

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/interaction"
	"github.com/ayusman/mudra/internal/logging"
	"github.com/ayusman/mudra/internal/monitor"
	"github.com/ayusman/mudra/testdata"
)

const settingsYAML = `
logging:
  level: error
monitor:
  enabled: true
  queue_size: 512
dispatcher:
  query_radius: 0.3
`

func loadSettings(t *testing.T, content string) *config.Config {
	t.Helper()
	v := config.NewViper()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(strings.NewReader(content)); err != nil {
		t.Fatalf("ReadConfig() error = %v", err)
	}
	cfg, err := config.Load(v)
	if err != nil {
		t.Fatalf("config.Load() error = %v", err)
	}
	return cfg
}

func TestE2E_CompleteWorkflow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	settings := loadSettings(t, settingsYAML)
	mon := monitor.New(monitor.Config{QueueSize: settings.Monitor.QueueSize})
	ts := httptest.NewServer(mon)
	defer ts.Close()

	t.Run("Health", func(t *testing.T) {
		resp, err := ts.Client().Get(ts.URL + "/api/health")
		if err != nil {
			t.Fatalf("health error = %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
		}
	})

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/events"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for mon.Hub().Stats().Clients == 0 {
		if time.Now().After(deadline) {
			t.Fatal("websocket client never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	application, err := app.New(app.Config{
		Settings: settings,
		Logger:   logging.NopLogger(),
		Monitor:  mon,
		Seed:     7,
	})
	if err != nil {
		t.Fatalf("app.New() error = %v", err)
	}

	demo, err := testdata.LoadScript("demo")
	if err != nil {
		t.Fatalf("LoadScript() error = %v", err)
	}
	sum := application.Simulate(demo, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	total := 0
	for _, n := range sum.Notices {
		total += n
	}
	if total == 0 {
		t.Fatal("simulation produced no notices")
	}

	started := make(map[string]bool)
	for i := 0; i < total; i++ {
		conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("ReadMessage() after %d of %d notices: %v", i, total, err)
		}
		var n interaction.Notice
		if err := json.Unmarshal(data, &n); err != nil {
			t.Fatalf("decode notice: %v", err)
		}
		if n.Type == interaction.EffectStarted {
			started[n.Effect+"@"+n.Node] = true
		}
	}

	for _, want := range []string{"follow_hand@cube", "highlight@orb", "heartbeat@heart"} {
		if !started[want] {
			t.Errorf("effect %s never started over the websocket", want)
		}
	}

	if stats := mon.Hub().Stats(); stats.Dropped != 0 {
		t.Errorf("hub dropped %d notices", stats.Dropped)
	}
	if got := application.Dispatcher().Effects(); len(got) != 0 {
		t.Errorf("%d effects still running after simulation", len(got))
	}
}

func TestE2E_ScriptsTriggerGestures(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	gestures := map[string]string{
		"pinch": "pinch",
		"tap":   "tap",
		"point": "point",
		"palm":  "open_palm",
		"wave":  "wave",
	}

	application, err := app.New(app.Config{Settings: loadSettings(t, settingsYAML), Seed: 1})
	if err != nil {
		t.Fatalf("app.New() error = %v", err)
	}

	for name, kind := range gestures {
		t.Run(name, func(t *testing.T) {
			s, err := testdata.LoadScript(name)
			if err != nil {
				t.Fatalf("LoadScript() error = %v", err)
			}
			sum := application.Simulate(s, time.Unix(0, 0))
			if sum.Gestures[kind] == 0 {
				t.Errorf("Gestures = %v, want %s", sum.Gestures, kind)
			}
			if sum.Notices[interaction.EffectStarted] != sum.Notices[interaction.EffectStopped] {
				t.Errorf("started %d effects but stopped %d",
					sum.Notices[interaction.EffectStarted], sum.Notices[interaction.EffectStopped])
			}
		})
	}
}

func TestE2E_ConfiguredScene(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	settings := loadSettings(t, `
logging:
  level: error
scene:
  physics:
    gravity: {x: 0, y: 0, z: 0}
  objects:
    - name: bell
      position: {x: -0.2, y: 1.2, z: 0.5}
      radius: 0.08
      body:
        mass: 2
      responses:
        - gesture: pinch
          effect: push_away
          intensity: 0.5
          params:
            push:
              force: 4
`)

	application, err := app.New(app.Config{Settings: settings, Seed: 3})
	if err != nil {
		t.Fatalf("app.New() error = %v", err)
	}
	bell := application.Scene().Find("bell")
	if bell == nil {
		t.Fatal("bell not in scene")
	}
	if application.Scene().Find("cube") != nil {
		t.Error("demo objects should be replaced by the configured scene")
	}

	s, err := testdata.LoadScript("pinch")
	if err != nil {
		t.Fatalf("LoadScript() error = %v", err)
	}
	sum := application.Simulate(s, time.Unix(0, 0))
	if sum.Effects["push_away"] != 1 {
		t.Errorf("Effects = %v, want one push_away", sum.Effects)
	}
}
