package fronius

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

// newTestClient points a client at a httptest server.
func newTestClient(server *httptest.Server) *Client {
	return NewClient(Config{Host: server.URL[7:]}) // Remove "http://" prefix
}

const headOK = `"Head": {
	"Timestamp": "2019-06-23T11:20:19+02:00",
	"Status": {"Code": 0, "Reason": "", "UserMessage": ""}
}`

func TestCurrentPowerFlow(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			` + headOK + `,
			"Body": {"Data": {
				"Inverters": {
					"1": {"Battery_Mode": "normal", "SOC": 55.5, "DT": 99, "E_Day": 1000, "P": 500}
				},
				"Site": {
					"BatteryStandby": false,
					"E_Day": 10250,
					"E_Total": 8217000,
					"E_Year": 4316000,
					"Meter_Location": "grid",
					"Mode": "bidirectional",
					"P_Akku": -102.4,
					"P_Grid": 340.9,
					"P_Load": -841.4,
					"P_PV": 620,
					"rel_Autonomy": 59.5,
					"rel_SelfConsumption": 100
				}
			}}
		}`))
	}))
	defer server.Close()

	client := newTestClient(server)
	data, err := client.CurrentPowerFlow()
	if err != nil {
		t.Fatalf("CurrentPowerFlow() error = %v", err)
	}

	if gotPath != "/solar_api/v1/GetPowerFlowRealtimeData.fcgi" {
		t.Errorf("request path = %s, want /solar_api/v1/GetPowerFlowRealtimeData.fcgi", gotPath)
	}

	if data.Timestamp.Value != "2019-06-23T11:20:19+02:00" {
		t.Errorf("Timestamp = %v, want 2019-06-23T11:20:19+02:00", data.Timestamp.Value)
	}
	if data.StatusCode.Value != 0 {
		t.Errorf("StatusCode = %v, want 0", data.StatusCode.Value)
	}

	if data.BatteryMode.Value != "normal" || data.BatteryMode.Unit != "" {
		t.Errorf("BatteryMode = %+v, want value normal without unit", data.BatteryMode)
	}
	if data.StateOfCharge.Value != 55.5 || data.StateOfCharge.Unit != "%" {
		t.Errorf("StateOfCharge = %+v, want 55.5 %%", data.StateOfCharge)
	}
	if data.PowerGrid.Value != 340.9 || data.PowerGrid.Unit != "W" {
		t.Errorf("PowerGrid = %+v, want 340.9 W", data.PowerGrid)
	}
	if data.PowerBattery.Value != -102.4 {
		t.Errorf("PowerBattery = %+v, want -102.4", data.PowerBattery)
	}
	if data.EnergyDay.Value != 10250.0 || data.EnergyDay.Unit != "Wh" {
		t.Errorf("EnergyDay = %+v, want 10250 Wh", data.EnergyDay)
	}
	if data.RelativeAutonomy.Value != 59.5 || data.RelativeAutonomy.Unit != "%" {
		t.Errorf("RelativeAutonomy = %+v, want 59.5 %%", data.RelativeAutonomy)
	}
	if data.BatteryStandby.Value != false {
		t.Errorf("BatteryStandby = %+v, want false", data.BatteryStandby)
	}
}

func TestCurrentPowerFlow_MissingInverter(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			` + headOK + `,
			"Body": {"Data": {"Inverters": {"2": {"SOC": 10}}, "Site": {"P_Grid": 1}}}
		}`))
	}))
	defer server.Close()

	client := newTestClient(server)
	_, err := client.CurrentPowerFlow()
	if !errors.Is(err, ErrInvalidResponse) {
		t.Errorf("CurrentPowerFlow() error = %v, want ErrInvalidResponse", err)
	}
}

func TestCurrentSystemInverterData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("Scope") != "System" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			` + headOK + `,
			"Body": {"Data": {
				"DAY_ENERGY": {"Unit": "Wh", "Values": {"1": 10, "2": 20}},
				"TOTAL_ENERGY": {"Unit": "Wh", "Values": {"1": 1000, "2": 2000}},
				"YEAR_ENERGY": {"Unit": "Wh", "Values": {"1": 300, "2": 400}},
				"PAC": {"Unit": "W", "Values": {"1": 500, "2": 600}}
			}}
		}`))
	}))
	defer server.Close()

	client := newTestClient(server)
	data, err := client.CurrentSystemInverterData()
	if err != nil {
		t.Fatalf("CurrentSystemInverterData() error = %v", err)
	}

	if len(data.Inverters) != 2 {
		t.Fatalf("Inverters count = %d, want 2", len(data.Inverters))
	}

	one := data.Inverters["1"]
	if one.EnergyDay.Value != 10.0 || one.EnergyDay.Unit != "Wh" {
		t.Errorf(`Inverters["1"].EnergyDay = %+v, want 10 Wh`, one.EnergyDay)
	}
	two := data.Inverters["2"]
	if two.EnergyDay.Value != 20.0 {
		t.Errorf(`Inverters["2"].EnergyDay = %+v, want 20`, two.EnergyDay)
	}

	if data.EnergyDay.Value != 30.0 || data.EnergyDay.Unit != "Wh" {
		t.Errorf("EnergyDay = %+v, want sum 30 Wh", data.EnergyDay)
	}
	if data.EnergyTotal.Value != 3000.0 {
		t.Errorf("EnergyTotal = %+v, want sum 3000", data.EnergyTotal)
	}
	if data.EnergyYear.Value != 700.0 {
		t.Errorf("EnergyYear = %+v, want sum 700", data.EnergyYear)
	}
	if data.PowerAC.Value != 1100.0 {
		t.Errorf("PowerAC = %+v, want sum 1100", data.PowerAC)
	}

	// Per-inverter year energy and AC power carry the unit reported
	// under TOTAL_ENERGY.
	if one.EnergyYear.Unit != "Wh" {
		t.Errorf(`Inverters["1"].EnergyYear.Unit = %q, want Wh`, one.EnergyYear.Unit)
	}
	if one.PowerAC.Unit != "Wh" {
		t.Errorf(`Inverters["1"].PowerAC.Unit = %q, want Wh (taken from TOTAL_ENERGY)`, one.PowerAC.Unit)
	}
}

func TestCurrentSystemMeterData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			` + headOK + `,
			"Body": {"Data": {
				"0": {"PowerReal_P_Sum": 50.5, "Enable": 1, "Details": {"Manufacturer": "Fronius", "Model": "Smart Meter 63A", "Serial": "12345"}},
				"1": {"PowerReal_P_Sum": -10.0, "Enable": 0}
			}}
		}`))
	}))
	defer server.Close()

	client := newTestClient(server)
	data, err := client.CurrentSystemMeterData()
	if err != nil {
		t.Fatalf("CurrentSystemMeterData() error = %v", err)
	}

	if len(data.Meters) != 2 {
		t.Fatalf("Meters count = %d, want 2", len(data.Meters))
	}

	meter := data.Meters["0"]
	if meter.PowerReal.Value != 50.5 || meter.PowerReal.Unit != "W" {
		t.Errorf(`Meters["0"].PowerReal = %+v, want 50.5 W`, meter.PowerReal)
	}
	if meter.Manufacturer.Value != "Fronius" {
		t.Errorf(`Meters["0"].Manufacturer = %+v, want Fronius`, meter.Manufacturer)
	}
	if meter.Model.Value != "Smart Meter 63A" {
		t.Errorf(`Meters["0"].Model = %+v, want Smart Meter 63A`, meter.Model)
	}

	// Details absent on meter 1, so the identity readings stay zero.
	if data.Meters["1"].Manufacturer.Value != nil {
		t.Errorf(`Meters["1"].Manufacturer = %+v, want zero`, data.Meters["1"].Manufacturer)
	}

	// Fields the payload does not carry default to a zero reading.
	if meter.VoltageACPhase1.Value != 0 || meter.VoltageACPhase1.Unit != "V" {
		t.Errorf(`Meters["0"].VoltageACPhase1 = %+v, want default 0 V`, meter.VoltageACPhase1)
	}
}

func TestCurrentMeterData_DeviceScope(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			` + headOK + `,
			"Body": {"Data": {"Current_AC_Phase_1": 1.2, "PowerReal_P_Sum": 25}}
		}`))
	}))
	defer server.Close()

	client := newTestClient(server)
	data, err := client.CurrentMeterData(2)
	if err != nil {
		t.Fatalf("CurrentMeterData() error = %v", err)
	}

	if gotQuery != "Scope=Device&DeviceId=2" {
		t.Errorf("query = %s, want Scope=Device&DeviceId=2", gotQuery)
	}

	// Single-device meter fields merge into the result directly.
	if data.CurrentACPhase1.Value != 1.2 || data.CurrentACPhase1.Unit != "A" {
		t.Errorf("CurrentACPhase1 = %+v, want 1.2 A", data.CurrentACPhase1)
	}
	if data.PowerReal.Value != 25.0 {
		t.Errorf("PowerReal = %+v, want 25", data.PowerReal)
	}
}

func TestCurrentStorageData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			` + headOK + `,
			"Body": {"Data": {
				"Controller": {
					"Capacity_Maximum": 7680,
					"StateOfCharge_Relative": 44.6,
					"Voltage_DC": 48.2,
					"Enable": 1,
					"Details": {"Manufacturer": "BYD", "Model": "B-Box", "Serial": "X1"}
				},
				"Modules": [
					{"Enable": 1, "Temperature_Cell": 21.5},
					{"Enable": 0, "Temperature_Cell": 20.0}
				]
			}}
		}`))
	}))
	defer server.Close()

	client := newTestClient(server)
	data, err := client.CurrentStorageData(0)
	if err != nil {
		t.Fatalf("CurrentStorageData() error = %v", err)
	}

	// Controller fields merge into the result directly.
	if data.CapacityMaximum.Value != 7680.0 || data.CapacityMaximum.Unit != "Ah" {
		t.Errorf("CapacityMaximum = %+v, want 7680 Ah", data.CapacityMaximum)
	}
	if data.StateOfCharge.Value != 44.6 || data.StateOfCharge.Unit != "%" {
		t.Errorf("StateOfCharge = %+v, want 44.6 %%", data.StateOfCharge)
	}
	if data.Manufacturer.Value != "BYD" {
		t.Errorf("Manufacturer = %+v, want BYD", data.Manufacturer)
	}

	// Modules keep their payload order.
	if len(data.Modules) != 2 {
		t.Fatalf("Modules count = %d, want 2", len(data.Modules))
	}
	if data.Modules[0].Enable.Value != 1.0 {
		t.Errorf("Modules[0].Enable = %+v, want 1", data.Modules[0].Enable)
	}
	if data.Modules[1].Enable.Value != 0.0 {
		t.Errorf("Modules[1].Enable = %+v, want 0", data.Modules[1].Enable)
	}
}

func TestCurrentInverterData(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			` + headOK + `,
			"Body": {"Data": {
				"DAY_ENERGY": {"Unit": "Wh", "Value": 4211},
				"PAC": {"Unit": "W", "Value": 1500},
				"FAC": {"Unit": "Hz", "Value": 49.98},
				"UDC": {"Unit": "V", "Value": 401.1}
			}}
		}`))
	}))
	defer server.Close()

	client := newTestClient(server)
	data, err := client.CurrentInverterData(1)
	if err != nil {
		t.Fatalf("CurrentInverterData() error = %v", err)
	}

	if gotQuery != "Scope=Device&DeviceId=1&DataCollection=CommonInverterData" {
		t.Errorf("query = %s, want Scope=Device&DeviceId=1&DataCollection=CommonInverterData", gotQuery)
	}

	// Units come from the vendor's Value/Unit wrappers here.
	if data.EnergyDay.Value != 4211.0 || data.EnergyDay.Unit != "Wh" {
		t.Errorf("EnergyDay = %+v, want 4211 Wh", data.EnergyDay)
	}
	if data.FrequencyAC.Value != 49.98 || data.FrequencyAC.Unit != "Hz" {
		t.Errorf("FrequencyAC = %+v, want 49.98 Hz", data.FrequencyAC)
	}
	if data.VoltageDC.Value != 401.1 || data.VoltageDC.Unit != "V" {
		t.Errorf("VoltageDC = %+v, want 401.1 V", data.VoltageDC)
	}

	// TOTAL_ENERGY missing from the payload defaults to zero, no unit.
	if data.EnergyTotal.Value != 0 || data.EnergyTotal.Unit != "" {
		t.Errorf("EnergyTotal = %+v, want default 0 without unit", data.EnergyTotal)
	}
}

func TestCurrentCumulativeInverterData(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{` + headOK + `, "Body": {"Data": {"PAC": {"Unit": "W", "Value": 800}}}}`))
	}))
	defer server.Close()

	client := newTestClient(server)
	data, err := client.CurrentCumulativeInverterData(3)
	if err != nil {
		t.Fatalf("CurrentCumulativeInverterData() error = %v", err)
	}

	if gotQuery != "Scope=Device&DeviceId=3&DataCollection=CumulationInverterData" {
		t.Errorf("query = %s, want Scope=Device&DeviceId=3&DataCollection=CumulationInverterData", gotQuery)
	}
	if data.PowerAC.Value != 800.0 || data.PowerAC.Unit != "W" {
		t.Errorf("PowerAC = %+v, want 800 W", data.PowerAC)
	}
}

func TestCurrentData_EmptyBody(t *testing.T) {
	bodies := []struct {
		name string
		body string
	}{
		{"empty object", `{` + headOK + `, "Body": {"Data": {}}}`},
		{"pretty-printed empty object", `{` + headOK + `, "Body": {"Data": {
		}}}`},
		{"null data", `{` + headOK + `, "Body": {"Data": null}}`},
		{"missing body", `{` + headOK + `}`},
		{"empty array", `{` + headOK + `, "Body": {"Data": []}}`},
		{"zero number", `{` + headOK + `, "Body": {"Data": 0}}`},
		{"zero float", `{` + headOK + `, "Body": {"Data": 0.0}}`},
	}

	for _, tt := range bodies {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := newTestClient(server)
			data, err := client.CurrentSystemMeterData()
			if err != nil {
				t.Fatalf("CurrentSystemMeterData() error = %v", err)
			}

			// Header-only result: envelope fields set, nothing else.
			if data.Timestamp.Value != "2019-06-23T11:20:19+02:00" {
				t.Errorf("Timestamp = %v, want header value", data.Timestamp.Value)
			}
			if data.Status.Code != 0 {
				t.Errorf("Status.Code = %d, want 0", data.Status.Code)
			}
			if data.Meters != nil {
				t.Errorf("Meters = %v, want nil for empty body", data.Meters)
			}
		})
	}
}

func TestFetchJSON_MissingHead(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"no head", `{"Body": {"Data": {}}}`},
		{"no timestamp", `{"Head": {"Status": {"Code": 0, "Reason": "", "UserMessage": ""}}, "Body": {}}`},
		{"no status", `{"Head": {"Timestamp": "2019-06-23T11:20:19+02:00"}, "Body": {}}`},
		{"no status code", `{"Head": {"Timestamp": "2019-06-23T11:20:19+02:00", "Status": {"Reason": "", "UserMessage": ""}}, "Body": {}}`},
		{"no status reason", `{"Head": {"Timestamp": "2019-06-23T11:20:19+02:00", "Status": {"Code": 0, "UserMessage": ""}}, "Body": {}}`},
		{"no user message", `{"Head": {"Timestamp": "2019-06-23T11:20:19+02:00", "Status": {"Code": 0, "Reason": ""}}, "Body": {}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := newTestClient(server)
			_, err := client.CurrentPowerFlow()
			if !errors.Is(err, ErrInvalidResponse) {
				t.Errorf("CurrentPowerFlow() error = %v, want ErrInvalidResponse", err)
			}
		})
	}
}

func TestFetchJSON_InvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte("not json"))
	}))
	defer server.Close()

	client := newTestClient(server)
	_, err := client.CurrentPowerFlow()
	if err == nil {
		t.Error("CurrentPowerFlow() expected error for invalid JSON")
	}
}

func TestFetchJSON_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(server)
	_, err := client.CurrentSystemInverterData()
	if err == nil {
		t.Error("CurrentSystemInverterData() expected error for HTTP 500")
	}
}

func TestNewClient_Defaults(t *testing.T) {
	client := NewClient(Config{Host: "192.168.1.10"})

	if client.scheme != "http" {
		t.Errorf("scheme = %s, want http", client.scheme)
	}
	if client.httpClient.Timeout != defaultTimeout {
		t.Errorf("timeout = %v, want %v", client.httpClient.Timeout, defaultTimeout)
	}

	secure := NewClient(Config{Host: "192.168.1.10", UseHTTPS: true})
	if secure.scheme != "https" {
		t.Errorf("scheme = %s, want https", secure.scheme)
	}
}
