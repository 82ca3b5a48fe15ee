// Command genmock writes a synthetic TMYx or EPW weather file for tests,
// demos and load checks. Values follow smooth diurnal and seasonal curves so
// converted output is easy to eyeball; the file is byte-identical for the
// same flags.
//
// Usage:
//
//	go run ./cmd/genmock -out testdata/USA_CO_Denver.725650_TMYx.epw
//	go run ./cmd/genmock -out testdata/mock.csv -station 724698 -bad-rows 12
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"strconv"
	"strings"
	"time"
)

// preamble holds the seven metadata lines that follow LOCATION in a TMYx/EPW file.
var preamble = []string{
	"DESIGN CONDITIONS,0",
	"TYPICAL/EXTREME PERIODS,0",
	"GROUND TEMPERATURES,0",
	"HOLIDAYS/DAYLIGHT SAVINGS,No,0,0,0",
	"COMMENTS 1,Synthetic typical year generated for testing",
	"COMMENTS 2,Values are smooth curves and carry no climatological meaning",
	"DATA PERIODS,1,1,Data,Sunday, 1/ 1,12/31",
}

type options struct {
	out       string
	station   string
	name      string
	state     string
	year      int
	badRows   int
	truncated bool
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	var o options
	flag.StringVar(&o.out, "out", "", "output path (.csv or .epw)")
	flag.StringVar(&o.station, "station", "725650", "6-digit station identifier")
	flag.StringVar(&o.name, "name", "Denver Intl AP", "station name")
	flag.StringVar(&o.state, "state", "CO", "state or region code")
	flag.IntVar(&o.year, "year", 2021, "data year")
	flag.IntVar(&o.badRows, "bad-rows", 0, "number of malformed rows to inject")
	flag.BoolVar(&o.truncated, "truncated", false, "stop rows after the visibility column")
	flag.Parse()

	if o.out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}

	f, err := os.Create(o.out)
	if err != nil {
		return fmt.Errorf("create %s: %w", o.out, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	rows, bad, err := writeFile(w, o)
	if err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush %s: %w", o.out, err)
	}
	log.Printf("wrote %s: %d hourly rows, %d malformed", o.out, rows, bad)
	return nil
}

// writeFile emits the LOCATION line, the preamble and one row per hour, and
// returns the hourly and malformed row counts. Malformed rows are spread
// evenly through the year, at most one after each hour.
func writeFile(w io.Writer, o options) (rows, bad int, err error) {
	fmt.Fprintf(w, "LOCATION,%s,%s,USA,TMYx,%s,39.833,-104.65,-7.0,1650.0\r\n", o.name, o.state, o.station)
	for _, line := range preamble {
		fmt.Fprintf(w, "%s\r\n", line)
	}

	start := time.Date(o.year, time.January, 1, 0, 0, 0, 0, time.UTC)
	hours := 365 * 24
	every := 0
	if o.badRows > 0 {
		every = max(hours/o.badRows, 1)
	}

	for h := range hours {
		// EPW hours run 1-24; the 24th hour is written as hour 24 of the same day.
		ts := start.Add(time.Duration(h) * time.Hour)
		fields := hourFields(ts, h)
		if o.truncated {
			fields = fields[:25]
		}
		if _, err := fmt.Fprintf(w, "%s\r\n", strings.Join(fields, ",")); err != nil {
			return 0, 0, err
		}
		if every > 0 && bad < o.badRows && h%every == every-1 {
			if _, err := fmt.Fprintf(w, "%d,%d,%d,%d,0,MALFORMED\r\n", ts.Year(), int(ts.Month()), ts.Day(), ts.Hour()+1); err != nil {
				return 0, 0, err
			}
			bad++
		}
	}
	return hours, bad, nil
}

// hourFields builds the 35 columns of one hourly row.
func hourFields(ts time.Time, h int) []string {
	day := float64(ts.YearDay())
	hour := ts.Hour() + 1
	season := math.Cos(2 * math.Pi * (day - 200) / 365)
	diurnal := math.Sin(math.Pi * float64(hour-6) / 12)
	sun := math.Max(0, diurnal)

	dryBulb := 10 + 12*season + 6*diurnal
	dewPoint := dryBulb - 8
	ghi := 900 * sun * (0.6 + 0.4*season)

	return []string{
		strconv.Itoa(ts.Year()),
		strconv.Itoa(int(ts.Month())),
		strconv.Itoa(ts.Day()),
		strconv.Itoa(hour),
		"0",
		"?9?9?9?9E0?9?9?9?9*9?9?9?9?9?9?9?9?9*_*9*9*9?9?9",
		ftoa(dryBulb),
		ftoa(dewPoint),
		strconv.Itoa(55 - int(20*diurnal)),
		strconv.Itoa(83500 + h%7*10),
		strconv.Itoa(int(1360 * sun)),
		"1415",
		"280",
		strconv.Itoa(int(ghi)),
		strconv.Itoa(int(ghi * 0.8)),
		strconv.Itoa(int(ghi * 0.25)),
		strconv.Itoa(int(ghi * 110)),
		strconv.Itoa(int(ghi * 90)),
		strconv.Itoa(int(ghi * 30)),
		strconv.Itoa(int(ghi * 3)),
		strconv.Itoa(h * 15 % 360),
		ftoa(3 + 2*math.Abs(diurnal)),
		strconv.Itoa(h % 11),
		strconv.Itoa(h % 6),
		"16.1",
		"77777",
		"9",
		"999999999",
		"8",
		"0.0800",
		"0",
		"88",
		"0.160",
		"0.0",
		"1.0",
	}
}

func ftoa(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}
