// Package collector exposes Fronius realtime data as Prometheus metrics.
package collector

import (
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	fronius "github.com/JHOFER-Cloud/go-fronius"
)

// Target pairs a device name with its API client.
type Target struct {
	Name   string
	Client *fronius.Client
}

// Collector implements prometheus.Collector over one or more Fronius
// devices. Power flow and system inverter data are required per scrape;
// meter data is collected when available.
type Collector struct {
	targets []Target
	logger  *slog.Logger

	// Metrics
	powerGrid               *prometheus.Desc
	powerLoad               *prometheus.Desc
	powerPhotovoltaics      *prometheus.Desc
	powerBattery            *prometheus.Desc
	stateOfCharge           *prometheus.Desc
	relativeAutonomy        *prometheus.Desc
	relativeSelfConsumption *prometheus.Desc
	energyDay               *prometheus.Desc
	energyYear              *prometheus.Desc
	energyTotal             *prometheus.Desc
	inverterPowerAC         *prometheus.Desc
	inverterEnergyDay       *prometheus.Desc
	meterPowerReal          *prometheus.Desc
	meterFrequency          *prometheus.Desc
	scrapeSuccess           *prometheus.Desc
}

// New creates a collector for the given targets.
func New(targets []Target, logger *slog.Logger) *Collector {
	return &Collector{
		targets: targets,
		logger:  logger,
		powerGrid: prometheus.NewDesc(
			"fronius_power_grid_watts",
			"Power drawn from the grid in watts (negative=feeding in)",
			[]string{"device"},
			nil,
		),
		powerLoad: prometheus.NewDesc(
			"fronius_power_load_watts",
			"Site load in watts (negative=consuming)",
			[]string{"device"},
			nil,
		),
		powerPhotovoltaics: prometheus.NewDesc(
			"fronius_power_photovoltaics_watts",
			"Current photovoltaic production in watts",
			[]string{"device"},
			nil,
		),
		powerBattery: prometheus.NewDesc(
			"fronius_power_battery_watts",
			"Battery power in watts (negative=charging)",
			[]string{"device"},
			nil,
		),
		stateOfCharge: prometheus.NewDesc(
			"fronius_state_of_charge_percent",
			"Battery state of charge in percent",
			[]string{"device"},
			nil,
		),
		relativeAutonomy: prometheus.NewDesc(
			"fronius_relative_autonomy_percent",
			"Share of the load covered without the grid in percent",
			[]string{"device"},
			nil,
		),
		relativeSelfConsumption: prometheus.NewDesc(
			"fronius_relative_self_consumption_percent",
			"Share of the production consumed on site in percent",
			[]string{"device"},
			nil,
		),
		energyDay: prometheus.NewDesc(
			"fronius_energy_day_wh",
			"Site energy produced today in watt-hours",
			[]string{"device"},
			nil,
		),
		energyYear: prometheus.NewDesc(
			"fronius_energy_year_wh",
			"Site energy produced this year in watt-hours",
			[]string{"device"},
			nil,
		),
		energyTotal: prometheus.NewDesc(
			"fronius_energy_total_wh",
			"Site energy produced since installation in watt-hours",
			[]string{"device"},
			nil,
		),
		inverterPowerAC: prometheus.NewDesc(
			"fronius_inverter_power_ac_watts",
			"AC power of one inverter in watts",
			[]string{"device", "inverter"},
			nil,
		),
		inverterEnergyDay: prometheus.NewDesc(
			"fronius_inverter_energy_day_wh",
			"Energy produced today by one inverter in watt-hours",
			[]string{"device", "inverter"},
			nil,
		),
		meterPowerReal: prometheus.NewDesc(
			"fronius_meter_power_real_watts",
			"Real power sum of one smart meter in watts",
			[]string{"device", "meter"},
			nil,
		),
		meterFrequency: prometheus.NewDesc(
			"fronius_meter_frequency_hz",
			"Phase-average grid frequency of one smart meter in hertz",
			[]string{"device", "meter"},
			nil,
		),
		scrapeSuccess: prometheus.NewDesc(
			"fronius_scrape_success",
			"Whether scraping the device API was successful",
			[]string{"device"},
			nil,
		),
	}
}

// Describe implements prometheus.Collector
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.powerGrid
	ch <- c.powerLoad
	ch <- c.powerPhotovoltaics
	ch <- c.powerBattery
	ch <- c.stateOfCharge
	ch <- c.relativeAutonomy
	ch <- c.relativeSelfConsumption
	ch <- c.energyDay
	ch <- c.energyYear
	ch <- c.energyTotal
	ch <- c.inverterPowerAC
	ch <- c.inverterEnergyDay
	ch <- c.meterPowerReal
	ch <- c.meterFrequency
	ch <- c.scrapeSuccess
}

// Collect implements prometheus.Collector
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	var wg sync.WaitGroup

	for _, target := range c.targets {
		wg.Add(1)
		go func(t Target) {
			defer wg.Done()
			c.collectTarget(t, ch)
		}(target)
	}

	wg.Wait()
}

func (c *Collector) collectTarget(target Target, ch chan<- prometheus.Metric) {
	powerFlow, err := target.Client.CurrentPowerFlow()
	if err != nil {
		c.logger.Error("failed to fetch power flow data", "device", target.Name, "error", err)
		ch <- prometheus.MustNewConstMetric(c.scrapeSuccess, prometheus.GaugeValue, 0, target.Name)
		return
	}

	inverters, err := target.Client.CurrentSystemInverterData()
	if err != nil {
		c.logger.Error("failed to fetch system inverter data", "device", target.Name, "error", err)
		ch <- prometheus.MustNewConstMetric(c.scrapeSuccess, prometheus.GaugeValue, 0, target.Name)
		return
	}

	ch <- prometheus.MustNewConstMetric(c.scrapeSuccess, prometheus.GaugeValue, 1, target.Name)

	c.emit(ch, c.powerGrid, powerFlow.PowerGrid, target.Name)
	c.emit(ch, c.powerLoad, powerFlow.PowerLoad, target.Name)
	c.emit(ch, c.powerPhotovoltaics, powerFlow.PowerPhotovoltaics, target.Name)
	c.emit(ch, c.powerBattery, powerFlow.PowerBattery, target.Name)
	c.emit(ch, c.stateOfCharge, powerFlow.StateOfCharge, target.Name)
	c.emit(ch, c.relativeAutonomy, powerFlow.RelativeAutonomy, target.Name)
	c.emit(ch, c.relativeSelfConsumption, powerFlow.RelativeSelfConsumption, target.Name)
	c.emit(ch, c.energyDay, powerFlow.EnergyDay, target.Name)
	c.emit(ch, c.energyYear, powerFlow.EnergyYear, target.Name)
	c.emit(ch, c.energyTotal, powerFlow.EnergyTotal, target.Name)

	for id, inverter := range inverters.Inverters {
		c.emit(ch, c.inverterPowerAC, inverter.PowerAC, target.Name, id)
		c.emit(ch, c.inverterEnergyDay, inverter.EnergyDay, target.Name, id)
	}

	// Not every system has meters attached; keep the scrape successful
	// and just skip the meter metrics.
	meters, err := target.Client.CurrentSystemMeterData()
	if err != nil {
		c.logger.Warn("failed to fetch system meter data", "device", target.Name, "error", err)
		return
	}
	for id, meter := range meters.Meters {
		c.emit(ch, c.meterPowerReal, meter.PowerReal, target.Name, id)
		c.emit(ch, c.meterFrequency, meter.FrequencyPhaseAverage, target.Name, id)
	}
}

// emit sends one gauge when the reading carries a numeric value.
// Non-numeric readings (modes, locations) have no gauge representation.
func (c *Collector) emit(ch chan<- prometheus.Metric, desc *prometheus.Desc, r fronius.Reading, labels ...string) {
	value, ok := gaugeValue(r)
	if !ok {
		return
	}
	ch <- prometheus.MustNewConstMetric(desc, prometheus.GaugeValue, value, labels...)
}

func gaugeValue(r fronius.Reading) (float64, bool) {
	switch v := r.Value.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}
