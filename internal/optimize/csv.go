package optimize

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"
)

func WriteLedgerCSV(path string, ledger []LedgerRow) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{
		"index",
		"start",
		"end",
		"net_load_kw",
		"price_per_kwh",
		"action",
		"requested_power_kw",
		"power_kw",
		"energy_in_kwh",
		"energy_out_kwh",
		"throughput_kwh",
		"soc_start",
		"soc_end",
		"import_kwh",
		"cost",
		"cum_cost",
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, r := range ledger {
		row := []string{
			strconv.Itoa(r.Index),
			fmtTime(r.Start),
			fmtTime(r.End),
			fmtFloat(r.NetLoadKW),
			fmtFloat(r.PricePerKWh),
			string(r.Action),
			fmtFloat(r.RequestedPowerKW),
			fmtFloat(r.PowerKW),
			fmtFloat(r.EnergyInKWh),
			fmtFloat(r.EnergyOutKWh),
			fmtFloat(r.ThroughputKWh),
			fmtFloat(r.SOCStart),
			fmtFloat(r.SOCEnd),
			fmtFloat(r.ImportKWh),
			fmtFloat(r.Cost),
			fmtFloat(r.CumCost),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return w.Error()
}

func fmtTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

func fmtFloat(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
