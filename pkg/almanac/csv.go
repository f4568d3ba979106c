package almanac

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/muwaqqit/tarikh/pkg/types"
)

const csvVersion = "# tarikh-almanac v1"

// maxRowErrors caps the failures collected from one file, so a corrupt
// table reports its first problems instead of flooding the log.
const maxRowErrors = 20

var csvHeader = []string{
	"jdn",
	"g_year", "g_month", "g_day",
	"h_year", "h_month", "h_day",
	"p_year", "p_month", "p_day",
	"weekday",
}

// Save writes the table as versioned CSV.
func (s *Service) Save(w io.Writer) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintln(bw, csvVersion); err != nil {
		return fmt.Errorf("writing almanac version: %w", err)
	}

	cw := csv.NewWriter(bw)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("writing almanac header: %w", err)
	}
	for _, r := range s.rows {
		rec := []string{
			strconv.Itoa(r.JDN),
			strconv.Itoa(r.Gregorian.Year), strconv.Itoa(r.Gregorian.Month), strconv.Itoa(r.Gregorian.Day),
			strconv.Itoa(r.Hijri.Year), strconv.Itoa(r.Hijri.Month), strconv.Itoa(r.Hijri.Day),
			strconv.Itoa(r.Persian.Year), strconv.Itoa(r.Persian.Month), strconv.Itoa(r.Persian.Day),
			string(r.Weekday),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("writing almanac row %d: %w", r.JDN, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing almanac: %w", err)
	}
	return bw.Flush()
}

// Load reads a versioned CSV table. Every validation failure is
// collected and reported in one error; a partially loaded table is
// never returned.
func Load(r io.Reader) (*Service, error) {
	br := bufio.NewReader(r)
	line, err := br.ReadString('\n')
	if err != nil {
		return nil, fmt.Errorf("reading almanac version: %w", err)
	}
	if strings.TrimSpace(line) != csvVersion {
		return nil, fmt.Errorf("unsupported almanac version %q", strings.TrimSpace(line))
	}

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = len(csvHeader)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading almanac header: %w", err)
	}
	if header[0] != csvHeader[0] {
		return nil, fmt.Errorf("almanac header starts with %q, want %q", header[0], csvHeader[0])
	}

	var rows []Row
	var rowErrors []string
	record := 1
	for len(rowErrors) < maxRowErrors {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		record++
		if err != nil {
			rowErrors = append(rowErrors, fmt.Sprintf("record %d: %v", record, err))
			break
		}

		row, problem := parseRow(rec)
		if problem != "" {
			rowErrors = append(rowErrors, fmt.Sprintf("record %d: %s", record, problem))
			continue
		}
		if len(rows) > 0 && row.JDN != rows[len(rows)-1].JDN+1 {
			rowErrors = append(rowErrors, fmt.Sprintf("record %d: day number %d breaks contiguity after %d", record, row.JDN, rows[len(rows)-1].JDN))
			continue
		}
		rows = append(rows, row)
	}

	if len(rowErrors) >= maxRowErrors {
		rowErrors = append(rowErrors, "further errors suppressed")
	}
	if len(rowErrors) > 0 {
		return nil, fmt.Errorf("errors loading almanac: %s", strings.Join(rowErrors, "; "))
	}
	return newService(rows)
}

// parseRow validates one record. The Gregorian columns and the weekday
// must agree with the day number; the Hijri and Persian columns only
// get bounds checks, since observational tables legitimately differ
// from arithmetic there.
func parseRow(rec []string) (Row, string) {
	nums := make([]int, 10)
	for i := 0; i < 10; i++ {
		n, err := strconv.Atoi(rec[i])
		if err != nil {
			return Row{}, fmt.Sprintf("column %s: %v", csvHeader[i], err)
		}
		nums[i] = n
	}

	row := Row{
		JDN:       nums[0],
		Gregorian: Date{Year: nums[1], Month: nums[2], Day: nums[3]},
		Hijri:     Date{Year: nums[4], Month: nums[5], Day: nums[6]},
		Persian:   Date{Year: nums[7], Month: nums[8], Day: nums[9]},
		Weekday:   types.Weekday(rec[10]),
	}

	if gy, gm, gd := jdnToGregorian(row.JDN); gy != row.Gregorian.Year || gm != row.Gregorian.Month || gd != row.Gregorian.Day {
		return Row{}, fmt.Sprintf("gregorian date %s does not match day number %d", row.Gregorian, row.JDN)
	}
	if row.Weekday.Index() < 0 {
		return Row{}, fmt.Sprintf("unknown weekday %q", rec[10])
	}
	if row.Weekday != jdnWeekday(row.JDN) {
		return Row{}, fmt.Sprintf("weekday %s does not match day number %d", row.Weekday, row.JDN)
	}
	if row.Hijri.Month < 1 || row.Hijri.Month > 12 || row.Hijri.Day < 1 || row.Hijri.Day > 30 {
		return Row{}, fmt.Sprintf("hijri date %s out of bounds", row.Hijri)
	}
	if row.Persian.Month < 1 || row.Persian.Month > 12 || row.Persian.Day < 1 || row.Persian.Day > 31 {
		return Row{}, fmt.Sprintf("persian date %s out of bounds", row.Persian)
	}
	return row, ""
}
