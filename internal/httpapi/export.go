package httpapi

import (
	"encoding/csv"
	"net/http"
	"strconv"

	"github.com/italsem/fleetd/internal/fleet/store"
	"github.com/italsem/fleetd/internal/fleet/types"
)

var csvHeader = []string{
	"vehicle_code", "plate", "refuel_at", "odometer_km",
	"liters", "amount", "source_type", "source_identifier",
	"distance_km", "km_per_liter", "liters_per_100km",
}

// handleExportCSV streams the refueling history as CSV, honoring the same
// vehicleId/from/to filters as the JSON listing.  Undefined metrics export
// as empty cells, never as zeros.
func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	window, err := parseWindow(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_window", err.Error())
		return
	}
	f := store.EventFilter{From: window.From, To: window.To}
	if raw := r.URL.Query().Get("vehicleId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			writeError(w, http.StatusBadRequest, "bad_vehicle_id", "vehicleId must be a positive integer")
			return
		}
		f.VehicleID = id
	}

	rows, err := s.refuels.List(r.Context(), f)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	vehicles, err := s.vehicles.List(r.Context(), false)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	byID := make(map[int64]types.Vehicle, len(vehicles))
	for _, v := range vehicles {
		byID[v.ID] = v
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="refuelings.csv"`)

	cw := csv.NewWriter(w)
	_ = cw.Write(csvHeader)
	for _, row := range rows {
		v := byID[row.Event.VehicleID]
		_ = cw.Write([]string{
			v.Code,
			v.Plate,
			row.Event.RefuelAt.Format(types.RefuelAtLayout),
			formatFloat(row.Event.OdometerKm),
			formatFloat(row.Event.Liters),
			formatFloat(row.Event.Amount),
			row.Event.SourceType,
			row.Event.SourceIdentifier,
			formatMetric(row.DistanceKm),
			formatMetric(row.KmPerLiter),
			formatMetric(row.LitersPer100Km),
		})
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		s.logger.Warn("csv export truncated")
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func formatMetric(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', 2, 64)
}
