// Package domain models typical-meteorological-year weather records and the
// mapping from TMYx/EPW hourly rows onto the legacy TMY3 layout.
//
// # Source Formats
//
// TMYx files (published as .csv) and EnergyPlus EPW files share one layout:
// a variable-length metadata preamble followed by one comma-delimited row
// per hour of the year.
//
// Preamble, line 1:
//
//	LOCATION,<name>,<state>,<country>,<source>,<station id>,<lat>,<lon>,<tz>,<elevation>
//	e.g. "LOCATION,Denver Intl AP,CO,USA,TMYx,725650,39.833,-104.65,-7.0,1650.0"
//
// The remaining preamble lines (design conditions, typical periods, ground
// temperatures, holidays, comments, data periods) are ignored. The hourly
// block starts at the first line whose first field is a 4-digit year; the
// conventional offset is line 9 and is used when no such line is found.
//
// Hourly row columns (0-indexed):
//
//	0-4    year, month, day, hour, minute
//	5      data source and uncertainty flags (dropped)
//	6-8    dry-bulb (C), dew-point (C), relative humidity (%)
//	9      station pressure (Pa)
//	10-11  extraterrestrial horizontal / direct normal radiation
//	12     horizontal infrared radiation (dropped)
//	13-15  global, direct normal, diffuse horizontal irradiance
//	16-19  global, direct normal, diffuse illuminance, zenith luminance
//	20-21  wind direction, wind speed
//	22-23  total and opaque sky cover
//	24-25  visibility, ceiling height
//	26-27  present weather observation and codes
//	28-29  precipitable water, aerosol optical depth
//	30-32  snow depth, days since last snowfall, albedo
//	33-34  liquid precipitation depth and quantity
//
// # TMY3 Conventions
//
// Dates are written M/D/YYYY using the source digits verbatim (no padding).
//
// Hours run 1-24: source hour "0" is the last hour of the previous day and is
// written as "24:00:00" (minute "0") or "24:<minute>". Every other hour is
// written "<hour>:<minute>" with minute "0" rendered as "00". Only the hour-24
// branch carries seconds; downstream readers accept both forms.
//
// Pressure is written in whole millibars, truncated from Pa/100. A missing,
// non-numeric, zero or negative source pressure is written as an empty cell.
package domain
