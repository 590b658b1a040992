package fronius

// Reading is a single normalized measurement: the raw vendor value plus
// an optional unit string.
type Reading struct {
	Value any    `json:"value"`
	Unit  string `json:"unit,omitempty"`
}

// StatusInfo mirrors the Status object from the response envelope header.
type StatusInfo struct {
	Code        int    `json:"Code"`
	Reason      string `json:"Reason"`
	UserMessage string `json:"UserMessage"`
}

// Header carries the envelope fields present on every result, regardless
// of endpoint.
type Header struct {
	Timestamp     Reading    `json:"timestamp"`
	Status        StatusInfo `json:"status"`
	StatusCode    Reading    `json:"status_code"`
	StatusReason  Reading    `json:"status_reason"`
	StatusMessage Reading    `json:"status_message"`
}

// PowerFlowData is the normalized result of GetPowerFlowRealtimeData.
// The battery fields come from inverter "1"; multi-inverter power flow
// systems are not supported.
type PowerFlowData struct {
	Header
	BatteryMode             Reading `json:"battery_mode"`
	StateOfCharge           Reading `json:"state_of_charge"`
	BatteryStandby          Reading `json:"battery_standby"`
	EnergyDay               Reading `json:"energy_day"`
	EnergyTotal             Reading `json:"energy_total"`
	EnergyYear              Reading `json:"energy_year"`
	MeterLocation           Reading `json:"meter_location"`
	MeterMode               Reading `json:"meter_mode"`
	PowerBattery            Reading `json:"power_battery"`
	PowerGrid               Reading `json:"power_grid"`
	PowerLoad               Reading `json:"power_load"`
	PowerPhotovoltaics      Reading `json:"power_photovoltaics"`
	RelativeAutonomy        Reading `json:"relative_autonomy"`
	RelativeSelfConsumption Reading `json:"relative_self_consumption"`
}

// MeterReadings holds the normalized fields of one smart meter.
type MeterReadings struct {
	CurrentACPhase1          Reading `json:"current_ac_phase_1"`
	CurrentACPhase2          Reading `json:"current_ac_phase_2"`
	CurrentACPhase3          Reading `json:"current_ac_phase_3"`
	EnergyReactiveACConsumed Reading `json:"energy_reactive_ac_consumed"`
	EnergyReactiveACProduced Reading `json:"energy_reactive_ac_produced"`
	EnergyRealACMinus        Reading `json:"energy_real_ac_minus"`
	EnergyRealACPlus         Reading `json:"energy_real_ac_plus"`
	EnergyRealConsumed       Reading `json:"energy_real_consumed"`
	EnergyRealProduced       Reading `json:"energy_real_produced"`
	FrequencyPhaseAverage    Reading `json:"frequency_phase_average"`
	PowerApparentPhase1      Reading `json:"power_apparent_phase_1"`
	PowerApparentPhase2      Reading `json:"power_apparent_phase_2"`
	PowerApparentPhase3      Reading `json:"power_apparent_phase_3"`
	PowerApparent            Reading `json:"power_apparent"`
	PowerFactorPhase1        Reading `json:"power_factor_phase_1"`
	PowerFactorPhase2        Reading `json:"power_factor_phase_2"`
	PowerFactorPhase3        Reading `json:"power_factor_phase_3"`
	PowerFactor              Reading `json:"power_factor"`
	PowerReactivePhase1      Reading `json:"power_reactive_phase_1"`
	PowerReactivePhase2      Reading `json:"power_reactive_phase_2"`
	PowerReactivePhase3      Reading `json:"power_reactive_phase_3"`
	PowerReactive            Reading `json:"power_reactive"`
	PowerRealPhase1          Reading `json:"power_real_phase_1"`
	PowerRealPhase2          Reading `json:"power_real_phase_2"`
	PowerRealPhase3          Reading `json:"power_real_phase_3"`
	PowerReal                Reading `json:"power_real"`
	VoltageACPhase1          Reading `json:"voltage_ac_phase_1"`
	VoltageACPhase2          Reading `json:"voltage_ac_phase_2"`
	VoltageACPhase3          Reading `json:"voltage_ac_phase_3"`
	VoltageACPhaseToPhase12  Reading `json:"voltage_ac_phase_to_phase_12"`
	VoltageACPhaseToPhase23  Reading `json:"voltage_ac_phase_to_phase_23"`
	VoltageACPhaseToPhase31  Reading `json:"voltage_ac_phase_to_phase_31"`
	MeterLocation            Reading `json:"meter_location"`
	Enable                   Reading `json:"enable"`
	Visible                  Reading `json:"visible"`
	Manufacturer             Reading `json:"manufacturer"`
	Model                    Reading `json:"model"`
	Serial                   Reading `json:"serial"`
}

// SystemMeterData is the normalized result of the system-wide meter
// query: one MeterReadings per meter device id.
type SystemMeterData struct {
	Header
	Meters map[string]MeterReadings `json:"meters,omitempty"`
}

// MeterData is the normalized result of a single-device meter query.
// The meter fields merge directly into the result, without the meters
// wrapper of the system-wide query.
type MeterData struct {
	Header
	MeterReadings
}

// InverterReadings holds the per-inverter values of the system-wide
// inverter query.
type InverterReadings struct {
	EnergyDay   Reading `json:"energy_day"`
	EnergyTotal Reading `json:"energy_total"`
	EnergyYear  Reading `json:"energy_year"`
	PowerAC     Reading `json:"power_ac"`
}

// SystemInverterData is the normalized result of the system-wide
// inverter query: system-wide sums plus one entry per inverter id.
type SystemInverterData struct {
	Header
	EnergyDay   Reading                      `json:"energy_day"`
	EnergyTotal Reading                      `json:"energy_total"`
	EnergyYear  Reading                      `json:"energy_year"`
	PowerAC     Reading                      `json:"power_ac"`
	Inverters   map[string]*InverterReadings `json:"inverters,omitempty"`
}

// InverterData is the normalized result of a single-device inverter
// query (common or cumulative data collection). Units come from the
// vendor payload where provided.
type InverterData struct {
	Header
	EnergyDay   Reading `json:"energy_day"`
	EnergyTotal Reading `json:"energy_total"`
	EnergyYear  Reading `json:"energy_year"`
	FrequencyAC Reading `json:"frequency_ac"`
	CurrentAC   Reading `json:"current_ac"`
	CurrentDC   Reading `json:"current_dc"`
	PowerAC     Reading `json:"power_ac"`
	VoltageAC   Reading `json:"voltage_ac"`
	VoltageDC   Reading `json:"voltage_dc"`
}

// ControllerReadings holds the normalized fields of a battery pack
// controller.
type ControllerReadings struct {
	CapacityMaximum      Reading `json:"capacity_maximum"`
	CapacityDesigned     Reading `json:"capacity_designed"`
	CurrentDC            Reading `json:"current_dc"`
	VoltageDC            Reading `json:"voltage_dc"`
	VoltageDCMaximumCell Reading `json:"voltage_dc_maximum_cell"`
	VoltageDCMinimumCell Reading `json:"voltage_dc_minimum_cell"`
	StateOfCharge        Reading `json:"state_of_charge"`
	TemperatureCell      Reading `json:"temperature_cell"`
	Enable               Reading `json:"enable"`
	Manufacturer         Reading `json:"manufacturer"`
	Model                Reading `json:"model"`
	Serial               Reading `json:"serial"`
}

// ModuleReadings holds the normalized fields of one battery cell module:
// the controller fields plus per-cell extremes and cycle data.
type ModuleReadings struct {
	ControllerReadings
	TemperatureCellMaximum Reading `json:"temperature_cell_maximum"`
	TemperatureCellMinimum Reading `json:"temperature_cell_minimum"`
	CycleCountCell         Reading `json:"cycle_count_cell"`
	StatusCell             Reading `json:"status_cell"`
}

// StorageData is the normalized result of a single-device storage query.
// Controller fields merge directly into the result; modules are ordered
// by their position in the vendor payload.
type StorageData struct {
	Header
	ControllerReadings
	Modules []ModuleReadings `json:"modules,omitempty"`
}
