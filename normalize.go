package fronius

import (
	"encoding/json"
	"fmt"
)

// copyReading normalizes one vendor field into a Reading. A field that
// is itself an object with a Value key yields that value (plus its Unit
// if present); any other present field is taken as the value itself; an
// absent field yields a zero value. An explicit unit always wins over a
// unit found in the payload.
func copyReading(source map[string]any, field, unit string) Reading {
	var r Reading

	raw, ok := source[field]
	wrapper, isWrapper := raw.(map[string]any)
	switch {
	case ok && isWrapper && hasKey(wrapper, "Value"):
		r.Value = wrapper["Value"]
		// Unit is typed as a string; a non-string Unit in the wrapper
		// is dropped. The vendor only ever sends string units.
		if u, ok := wrapper["Unit"].(string); ok {
			r.Unit = u
		}
	case ok:
		r.Value = raw
	default:
		r.Value = 0
	}

	if unit != "" {
		r.Unit = unit
	}
	return r
}

func hasKey(m map[string]any, key string) bool {
	_, ok := m[key]
	return ok
}

func normalizePowerFlow(out *PowerFlowData, raw json.RawMessage) error {
	var data struct {
		Site      map[string]any            `json:"Site"`
		Inverters map[string]map[string]any `json:"Inverters"`
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return fmt.Errorf("failed to decode power flow data: %w", err)
	}

	// Only the first battery inverter is read. Power flow systems with
	// more inverters are not supported.
	inverter, ok := data.Inverters["1"]
	if !ok {
		return fmt.Errorf("%w: power flow data has no inverter \"1\"", ErrInvalidResponse)
	}
	out.BatteryMode = copyReading(inverter, "Battery_Mode", "")
	out.StateOfCharge = copyReading(inverter, "SOC", "%")

	site := data.Site
	out.BatteryStandby = copyReading(site, "BatteryStandby", "")
	out.EnergyDay = copyReading(site, "E_Day", "Wh")
	out.EnergyTotal = copyReading(site, "E_Total", "Wh")
	out.EnergyYear = copyReading(site, "E_Year", "Wh")
	out.MeterLocation = copyReading(site, "Meter_Location", "")
	out.MeterMode = copyReading(site, "Mode", "")
	out.PowerBattery = copyReading(site, "P_Akku", "W")
	out.PowerGrid = copyReading(site, "P_Grid", "W")
	out.PowerLoad = copyReading(site, "P_Load", "W")
	out.PowerPhotovoltaics = copyReading(site, "P_PV", "W")
	out.RelativeAutonomy = copyReading(site, "rel_Autonomy", "%")
	out.RelativeSelfConsumption = copyReading(site, "rel_SelfConsumption", "%")

	return nil
}

func normalizeSystemMeters(out *SystemMeterData, raw json.RawMessage) error {
	var data map[string]map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return fmt.Errorf("failed to decode system meter data: %w", err)
	}

	out.Meters = make(map[string]MeterReadings, len(data))
	for id, meter := range data {
		out.Meters[id] = meterReadings(meter)
	}
	return nil
}

// valueSeries is one per-inverter series of the system inverter reply: a
// shared unit and a map of inverter id to value.
type valueSeries struct {
	Unit   string             `json:"Unit"`
	Values map[string]float64 `json:"Values"`
}

func normalizeSystemInverters(out *SystemInverterData, raw json.RawMessage) error {
	var data struct {
		DayEnergy   *valueSeries `json:"DAY_ENERGY"`
		TotalEnergy *valueSeries `json:"TOTAL_ENERGY"`
		YearEnergy  *valueSeries `json:"YEAR_ENERGY"`
		PAC         *valueSeries `json:"PAC"`
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return fmt.Errorf("failed to decode system inverter data: %w", err)
	}

	out.EnergyDay = Reading{Value: 0, Unit: "Wh"}
	out.EnergyTotal = Reading{Value: 0, Unit: "Wh"}
	out.EnergyYear = Reading{Value: 0, Unit: "Wh"}
	out.PowerAC = Reading{Value: 0, Unit: "W"}
	out.Inverters = make(map[string]*InverterReadings)

	// The device reports the unit of the year energy and AC power
	// series under TOTAL_ENERGY. Kept as-is for compatibility with
	// existing consumers.
	var totalUnit string
	if data.TotalEnergy != nil {
		totalUnit = data.TotalEnergy.Unit
	}

	if s := data.DayEnergy; s != nil {
		var sum float64
		for id, v := range s.Values {
			out.inverter(id).EnergyDay = Reading{Value: v, Unit: s.Unit}
			sum += v
		}
		out.EnergyDay.Value = sum
	}
	if s := data.TotalEnergy; s != nil {
		var sum float64
		for id, v := range s.Values {
			out.inverter(id).EnergyTotal = Reading{Value: v, Unit: s.Unit}
			sum += v
		}
		out.EnergyTotal.Value = sum
	}
	if s := data.YearEnergy; s != nil {
		var sum float64
		for id, v := range s.Values {
			out.inverter(id).EnergyYear = Reading{Value: v, Unit: totalUnit}
			sum += v
		}
		out.EnergyYear.Value = sum
	}
	if s := data.PAC; s != nil {
		var sum float64
		for id, v := range s.Values {
			out.inverter(id).PowerAC = Reading{Value: v, Unit: totalUnit}
			sum += v
		}
		out.PowerAC.Value = sum
	}

	return nil
}

// inverter returns the readings entry for one inverter id, creating it
// on first use.
func (d *SystemInverterData) inverter(id string) *InverterReadings {
	inv, ok := d.Inverters[id]
	if !ok {
		inv = &InverterReadings{}
		d.Inverters[id] = inv
	}
	return inv
}

func normalizeDeviceMeter(out *MeterData, raw json.RawMessage) error {
	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return fmt.Errorf("failed to decode meter data: %w", err)
	}

	out.MeterReadings = meterReadings(data)
	return nil
}

func normalizeDeviceStorage(out *StorageData, raw json.RawMessage) error {
	var data struct {
		Controller map[string]any   `json:"Controller"`
		Modules    []map[string]any `json:"Modules"`
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return fmt.Errorf("failed to decode storage data: %w", err)
	}

	if data.Controller != nil {
		out.ControllerReadings = controllerReadings(data.Controller)
	}
	if data.Modules != nil {
		out.Modules = make([]ModuleReadings, 0, len(data.Modules))
		for _, module := range data.Modules {
			out.Modules = append(out.Modules, moduleReadings(module))
		}
	}
	return nil
}

func normalizeDeviceInverter(out *InverterData, raw json.RawMessage) error {
	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return fmt.Errorf("failed to decode inverter data: %w", err)
	}

	out.EnergyDay = copyReading(data, "DAY_ENERGY", "")
	out.EnergyTotal = copyReading(data, "TOTAL_ENERGY", "")
	out.EnergyYear = copyReading(data, "YEAR_ENERGY", "")
	out.FrequencyAC = copyReading(data, "FAC", "")
	out.CurrentAC = copyReading(data, "IAC", "")
	out.CurrentDC = copyReading(data, "IDC", "")
	out.PowerAC = copyReading(data, "PAC", "")
	out.VoltageAC = copyReading(data, "UAC", "")
	out.VoltageDC = copyReading(data, "UDC", "")
	return nil
}

func meterReadings(data map[string]any) MeterReadings {
	var m MeterReadings

	m.CurrentACPhase1 = copyReading(data, "Current_AC_Phase_1", "A")
	m.CurrentACPhase2 = copyReading(data, "Current_AC_Phase_2", "A")
	m.CurrentACPhase3 = copyReading(data, "Current_AC_Phase_3", "A")
	m.EnergyReactiveACConsumed = copyReading(data, "EnergyReactive_VArAC_Sum_Consumed", "Wh")
	m.EnergyReactiveACProduced = copyReading(data, "EnergyReactive_VArAC_Sum_Produced", "Wh")
	m.EnergyRealACMinus = copyReading(data, "EnergyReal_WAC_Minus_Absolute", "Wh")
	m.EnergyRealACPlus = copyReading(data, "EnergyReal_WAC_Plus_Absolute", "Wh")
	m.EnergyRealConsumed = copyReading(data, "EnergyReal_WAC_Sum_Consumed", "Wh")
	m.EnergyRealProduced = copyReading(data, "EnergyReal_WAC_Sum_Produced", "Wh")
	m.FrequencyPhaseAverage = copyReading(data, "Frequency_Phase_Average", "H")
	m.PowerApparentPhase1 = copyReading(data, "PowerApparent_S_Phase_1", "W")
	m.PowerApparentPhase2 = copyReading(data, "PowerApparent_S_Phase_2", "W")
	m.PowerApparentPhase3 = copyReading(data, "PowerApparent_S_Phase_3", "W")
	m.PowerApparent = copyReading(data, "PowerApparent_S_Sum", "W")
	m.PowerFactorPhase1 = copyReading(data, "PowerFactor_Phase_1", "W")
	m.PowerFactorPhase2 = copyReading(data, "PowerFactor_Phase_2", "W")
	m.PowerFactorPhase3 = copyReading(data, "PowerFactor_Phase_3", "W")
	m.PowerFactor = copyReading(data, "PowerFactor_Sum", "W")
	m.PowerReactivePhase1 = copyReading(data, "PowerReactive_Q_Phase_1", "W")
	m.PowerReactivePhase2 = copyReading(data, "PowerReactive_Q_Phase_2", "W")
	m.PowerReactivePhase3 = copyReading(data, "PowerReactive_Q_Phase_3", "W")
	m.PowerReactive = copyReading(data, "PowerReactive_Q_Sum", "W")
	m.PowerRealPhase1 = copyReading(data, "PowerReal_P_Phase_1", "W")
	m.PowerRealPhase2 = copyReading(data, "PowerReal_P_Phase_2", "W")
	m.PowerRealPhase3 = copyReading(data, "PowerReal_P_Phase_3", "W")
	m.PowerReal = copyReading(data, "PowerReal_P_Sum", "W")
	m.VoltageACPhase1 = copyReading(data, "Voltage_AC_Phase_1", "V")
	m.VoltageACPhase2 = copyReading(data, "Voltage_AC_Phase_2", "V")
	m.VoltageACPhase3 = copyReading(data, "Voltage_AC_Phase_3", "V")
	m.VoltageACPhaseToPhase12 = copyReading(data, "Voltage_AC_PhaseToPhase_12", "V")
	m.VoltageACPhaseToPhase23 = copyReading(data, "Voltage_AC_PhaseToPhase_23", "V")
	m.VoltageACPhaseToPhase31 = copyReading(data, "Voltage_AC_PhaseToPhase_31", "V")

	m.MeterLocation = copyReading(data, "Meter_Location_Current", "")
	m.Enable = copyReading(data, "Enable", "")
	m.Visible = copyReading(data, "Visible", "")
	if details, ok := data["Details"].(map[string]any); ok {
		m.Manufacturer = copyReading(details, "Manufacturer", "")
		m.Model = copyReading(details, "Model", "")
		m.Serial = copyReading(details, "Serial", "")
	}

	return m
}

func controllerReadings(data map[string]any) ControllerReadings {
	var c ControllerReadings

	c.CapacityMaximum = copyReading(data, "Capacity_Maximum", "Ah")
	c.CapacityDesigned = copyReading(data, "DesignedCapacity", "Ah")
	c.CurrentDC = copyReading(data, "Current_DC", "A")
	c.VoltageDC = copyReading(data, "Voltage_DC", "V")
	c.VoltageDCMaximumCell = copyReading(data, "Voltage_DC_Maximum_Cell", "V")
	c.VoltageDCMinimumCell = copyReading(data, "Voltage_DC_Minimum_Cell", "V")
	c.StateOfCharge = copyReading(data, "StateOfCharge_Relative", "%")
	c.TemperatureCell = copyReading(data, "Temperature_Cell", "C")
	c.Enable = copyReading(data, "Enable", "")
	if details, ok := data["Details"].(map[string]any); ok {
		c.Manufacturer = copyReading(details, "Manufacturer", "")
		c.Model = copyReading(details, "Model", "")
		c.Serial = copyReading(details, "Serial", "")
	}

	return c
}

func moduleReadings(data map[string]any) ModuleReadings {
	var m ModuleReadings

	m.ControllerReadings = controllerReadings(data)
	m.TemperatureCellMaximum = copyReading(data, "Temperature_Cell_Maximum", "C")
	m.TemperatureCellMinimum = copyReading(data, "Temperature_Cell_Minimum", "C")
	m.CycleCountCell = copyReading(data, "CycleCount_BatteryCell", "C")
	m.StatusCell = copyReading(data, "Status_BatteryCell", "")

	return m
}
