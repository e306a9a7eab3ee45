package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"smartoffice-console/models"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/", 5*time.Second)
}

func TestLoginDoesNotSendBearer(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/login" || r.Method != http.MethodPost {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "" {
			t.Errorf("Authorization = %q, want empty", got)
		}
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["username"] != "ada@example.com" || body["password"] != "secret1" {
			t.Errorf("body = %v", body)
		}
		_, _ = io.WriteString(w, `{"access_token":"at","id_token":"it","refresh_token":"rt","user":{"userId":"u-1","role":"manager","officeId":"off-1","cognitoGroups":["Manager"]}}`)
	})

	res, err := c.Login(context.Background(), "ada@example.com", "secret1")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if res.AccessToken != "at" || res.User.OfficeID != "off-1" || len(res.User.CognitoGroups) != 1 {
		t.Fatalf("Login = %+v", res)
	}
}

func TestBearerCallsAttachToken(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer it-1" {
			t.Errorf("Authorization = %q, want Bearer it-1", got)
		}
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["access_token"] != "at-1" {
			t.Errorf("body = %v", body)
		}
		w.WriteHeader(http.StatusOK)
	})

	if err := c.Logout(context.Background(), "it-1", "at-1"); err != nil {
		t.Fatalf("Logout error: %v", err)
	}
}

func TestStatusErrorUnwrap(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/room-config":
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"error":"Room configuration not found"}`)
		case "/user-office":
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"message":"expired"}`)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	})

	ctx := context.Background()
	_, _, err := c.GetRoomConfig(ctx, "at", "off-1", "r-5")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetRoomConfig error = %v, want ErrNotFound", err)
	}
	var se *StatusError
	if !errors.As(err, &se) || se.Message != "Room configuration not found" {
		t.Fatalf("StatusError = %+v", se)
	}

	_, err = c.GetUserOffice(ctx, "at", "u-1")
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("GetUserOffice error = %v, want ErrUnauthorized", err)
	}

	_, err = c.ListRooms(ctx, "at", "off-1")
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrUnauthorized) || !errors.As(err, &se) {
		t.Fatalf("ListRooms error = %v, want plain StatusError", err)
	}
}

func TestGetRoomConfigWeakDecode(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("officeId") != "off-1" || r.URL.Query().Get("roomId") != "r-5" {
			t.Errorf("query = %s", r.URL.RawQuery)
		}
		_, _ = io.WriteString(w, `{"roomId":"r-5","officeId":"off-1","temperatureMode":"MANUAL","targetTemperature":24,"humidityMode":"off","targetLight":"450","thingName":"thing-5","currentHumidity":"41.5"}`)
	})

	cfg, status, err := c.GetRoomConfig(context.Background(), "at", "off-1", "r-5")
	if err != nil {
		t.Fatalf("GetRoomConfig error: %v", err)
	}
	if cfg.Temperature != (models.ChannelConfig{Mode: models.ModeManual, Target: 24}) {
		t.Fatalf("temperature = %+v", cfg.Temperature)
	}
	if cfg.Humidity != (models.ChannelConfig{Mode: models.ModeOff, Target: models.DefaultTargetHumidity}) {
		t.Fatalf("humidity = %+v", cfg.Humidity)
	}
	if cfg.Light != (models.ChannelConfig{Mode: models.ModeAuto, Target: 450}) {
		t.Fatalf("light = %+v", cfg.Light)
	}
	if cfg.AutoOnTime != "08:00" || cfg.AutoOffTime != "17:00" || cfg.AutoControl != models.AutoControlOn {
		t.Fatalf("schedule = %s-%s %s", cfg.AutoOnTime, cfg.AutoOffTime, cfg.AutoControl)
	}
	if status.ThingName != "thing-5" || status.CurrentHumidity == nil || *status.CurrentHumidity != 41.5 {
		t.Fatalf("status = %+v", status)
	}
}

func TestUpdateRoomConfigSendsFullReplace(t *testing.T) {
	t.Parallel()

	var got map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/room-config" {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
	})

	temp, hum, light := 22.0, 60.0, 300.0
	update := models.RoomConfigUpdate{
		TemperatureMode:   models.ModeAuto,
		HumidityMode:      models.ModeAuto,
		LightMode:         models.ModeAuto,
		TargetTemperature: &temp,
		TargetHumidity:    &hum,
		TargetLight:       &light,
		AutoOnTime:        "08:00",
		AutoOffTime:       "17:00",
	}
	if err := c.UpdateRoomConfig(context.Background(), "at", "off-1", "r-5", update); err != nil {
		t.Fatalf("UpdateRoomConfig error: %v", err)
	}
	if got["officeId"] != "off-1" || got["roomId"] != "r-5" {
		t.Fatalf("body = %v", got)
	}
	updates, _ := got["updates"].(map[string]any)
	for _, key := range []string{"temperatureMode", "humidityMode", "lightMode", "targetTemperature", "targetHumidity", "targetLight", "autoOnTime", "autoOffTime"} {
		if _, ok := updates[key]; !ok {
			t.Fatalf("updates missing %s: %v", key, updates)
		}
	}
}

func TestListRoomsAndOffices(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/rooms":
			_, _ = io.WriteString(w, `{"rooms":[{"roomId":"r-1","officeId":"off-1","currentTemperature":"23.5"},{"roomId":"r-2","officeId":"off-1"}]}`)
		case "/offices":
			_, _ = io.WriteString(w, `{"offices":[{"officeId":"off-1","name":"HQ","manager":{"managerName":"Bo","managerEmail":"bo@example.com"}}],"count":1}`)
		}
	})

	ctx := context.Background()
	rooms, err := c.ListRooms(ctx, "at", "off-1")
	if err != nil {
		t.Fatalf("ListRooms error: %v", err)
	}
	if len(rooms) != 2 || rooms[0].CurrentTemperature == nil || *rooms[0].CurrentTemperature != 23.5 {
		t.Fatalf("rooms = %+v", rooms)
	}

	offices, err := c.ListOffices(ctx, "at")
	if err != nil {
		t.Fatalf("ListOffices error: %v", err)
	}
	if len(offices) != 1 || offices[0].ManagerEmail != "bo@example.com" {
		t.Fatalf("offices = %+v", offices)
	}
}

func TestListLogsAcceptsBothShapes(t *testing.T) {
	t.Parallel()

	for _, body := range []string{
		`[{"timestamp":"2024-05-01T10:00:00Z","room":"r-1","action":"config_update"}]`,
		`{"logs":[{"timestamp":"2024-05-01T10:00:00Z","room":"r-1","action":"config_update"}]}`,
	} {
		body := body
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, body)
		})
		entries, err := c.ListLogs(context.Background(), "at")
		if err != nil {
			t.Fatalf("ListLogs(%s) error: %v", body, err)
		}
		if len(entries) != 1 || entries[0].Room != "r-1" {
			t.Fatalf("ListLogs(%s) = %+v", body, entries)
		}
	}
}

func TestProxyEnvelopeIsUnwrapped(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/login":
			_, _ = io.WriteString(w, `{"statusCode":401,"body":"{\"message\":\"Incorrect username or password.\"}"}`)
		case "/user-office":
			_, _ = io.WriteString(w, `{"statusCode":200,"body":"{\"userId\":\"u-1\",\"officeId\":\"off-2\"}"}`)
		}
	})

	ctx := context.Background()
	_, err := c.Login(ctx, "ada@example.com", "wrong1")
	var se *StatusError
	if !errors.As(err, &se) || se.StatusCode != http.StatusUnauthorized || se.Message != "Incorrect username or password." {
		t.Fatalf("Login error = %v", err)
	}

	office, err := c.GetUserOffice(ctx, "at", "u-1")
	if err != nil {
		t.Fatalf("GetUserOffice error: %v", err)
	}
	if office.OfficeID != "off-2" {
		t.Fatalf("OfficeID = %q, want off-2", office.OfficeID)
	}
}

func TestGetSensorDataParsesUnits(t *testing.T) {
	t.Parallel()

	for _, body := range []string{
		`{"data":[{"timestamp":1760000000,"temperature":"25.68 °C","humidity":"16.6 %","light":"24.9 cd"}]}`,
		`[{"timestamp":"1760000000","temperature":"25.68 °C","humidity":"16.6 %","light":"24.9 cd"}]`,
	} {
		body := body
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/sensor-data" || r.URL.Query().Get("roomId") != "r-1" || r.URL.Query().Get("hours") != "24" {
				t.Errorf("unexpected request %s", r.URL.String())
			}
			_, _ = io.WriteString(w, body)
		})

		readings, err := c.GetSensorData(context.Background(), "at", "r-1", 24)
		if err != nil {
			t.Fatalf("GetSensorData(%s) error: %v", body, err)
		}
		if len(readings) != 1 {
			t.Fatalf("readings = %d, want 1", len(readings))
		}
		got := readings[0]
		if got.Timestamp.Unix() != 1760000000 || got.Temperature != 25.68 || got.Humidity != 16.6 || got.Light != 24.9 {
			t.Fatalf("reading = %+v", got)
		}
	}
}

func TestReadingValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   any
		want float64
	}{
		{nil, 0},
		{21.5, 21.5},
		{"-3.5 °C", -3.5},
		{"n/a", 0},
		{"", 0},
	}
	for _, tt := range tests {
		if got := readingValue(tt.in); got != tt.want {
			t.Fatalf("readingValue(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestCreateRoomProvisioning(t *testing.T) {
	t.Parallel()

	var got map[string]string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/rooms" {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"message":"created","thingName":"off-1_r-7","certificatePem":"CERT","privateKey":"KEY","rootCA":"CA"}`)
	})

	room, err := c.CreateRoom(context.Background(), "at", "off-1", "r-7")
	if err != nil {
		t.Fatalf("CreateRoom error: %v", err)
	}
	if got["officeId"] != "off-1" || got["roomId"] != "r-7" {
		t.Fatalf("request body = %v", got)
	}
	if room.ThingName != "off-1_r-7" || room.PrivateKey != "KEY" || room.RootCA != "CA" || room.RoomID != "r-7" {
		t.Fatalf("room = %+v", room)
	}
}

func TestCreateRoomConflict(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = io.WriteString(w, `{"error":"Room already exists"}`)
	})

	_, err := c.CreateRoom(context.Background(), "at", "off-1", "r-7")
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("error = %v, want ErrConflict", err)
	}
}

func TestGetOfficeDetail(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("officeId") {
		case "off-1":
			_, _ = io.WriteString(w, `{"office":{"officeId":"off-1","name":"HQ","createdAt":1760000000,"manager":{"userId":"u-1","managerName":"Mia","managerEmail":"mia@example.com","managerStatus":"ACTIVE"}}}`)
		case "off-2":
			_, _ = io.WriteString(w, `{"office":{"officeId":"off-2","name":"Annex","manager":null}}`)
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"error":"Office not found"}`)
		}
	})
	ctx := context.Background()

	detail, err := c.GetOfficeDetail(ctx, "at", "off-1")
	if err != nil {
		t.Fatalf("GetOfficeDetail error: %v", err)
	}
	if detail.CreatedAt != "1760000000" {
		t.Fatalf("CreatedAt = %q, want 1760000000", detail.CreatedAt)
	}
	if detail.Manager == nil || detail.Manager.UserID != "u-1" || detail.Manager.Status != "ACTIVE" {
		t.Fatalf("manager = %+v", detail.Manager)
	}

	detail, err = c.GetOfficeDetail(ctx, "at", "off-2")
	if err != nil {
		t.Fatalf("GetOfficeDetail error: %v", err)
	}
	if detail.Manager != nil {
		t.Fatalf("manager = %+v, want nil", detail.Manager)
	}

	if _, err := c.GetOfficeDetail(ctx, "at", "off-x"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestUpdateOfficeTargets(t *testing.T) {
	t.Parallel()

	var bodies []map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/offices" {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		var b map[string]any
		_ = json.NewDecoder(r.Body).Decode(&b)
		bodies = append(bodies, b)
		_, _ = io.WriteString(w, `{"message":"updated"}`)
	})
	ctx := context.Background()

	if err := c.UpdateOffice(ctx, "at", "off-1", map[string]string{"name": "HQ"}); err != nil {
		t.Fatalf("UpdateOffice error: %v", err)
	}
	if err := c.UpdateManager(ctx, "at", "u-1", map[string]string{"status": "INACTIVE"}); err != nil {
		t.Fatalf("UpdateManager error: %v", err)
	}

	if len(bodies) != 2 {
		t.Fatalf("requests = %d, want 2", len(bodies))
	}
	if bodies[0]["target"] != "OFFICE" || bodies[0]["officeId"] != "off-1" || bodies[0]["userId"] != nil {
		t.Fatalf("office body = %v", bodies[0])
	}
	if bodies[1]["target"] != "MANAGER" || bodies[1]["userId"] != "u-1" || bodies[1]["officeId"] != nil {
		t.Fatalf("manager body = %v", bodies[1])
	}
}

func TestSignupVerificationCalls(t *testing.T) {
	t.Parallel()

	paths := map[string]map[string]any{}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "" {
			t.Errorf("%s sent Authorization header", r.URL.Path)
		}
		var b map[string]any
		_ = json.NewDecoder(r.Body).Decode(&b)
		paths[r.URL.Path] = b
	})
	ctx := context.Background()

	if err := c.VerifySignup(ctx, models.VerifySignupRequest{Email: "mia@example.com", Code: "123456", CompanyName: "Acme"}); err != nil {
		t.Fatalf("VerifySignup error: %v", err)
	}
	if err := c.ResendCode(ctx, "mia@example.com"); err != nil {
		t.Fatalf("ResendCode error: %v", err)
	}
	if got := paths["/verify-signup"]; got["code"] != "123456" || got["companyName"] != "Acme" {
		t.Fatalf("verify body = %v", got)
	}
	if got := paths["/resend-code"]; got["email"] != "mia@example.com" {
		t.Fatalf("resend body = %v", got)
	}
}
