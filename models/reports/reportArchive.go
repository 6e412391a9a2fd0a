package reports

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/salesync/reports_backend/utils"
)

const (
	ReportTypeDailyVisits          = "visit_details"
	ReportTypeTeamLeadVisits       = "team_lead_visit_report"
	ReportTypeTeamLeadVisitDetails = "team_lead_visits_details_export"
)

// ReportTypes lists archive report types in listing order.
var ReportTypes = []string{ReportTypeDailyVisits, ReportTypeTeamLeadVisits, ReportTypeTeamLeadVisitDetails}

var reportTypeFolders = map[string]string{
	ReportTypeDailyVisits:          "visit_details",
	ReportTypeTeamLeadVisits:       "team_lead_visit_report",
	ReportTypeTeamLeadVisitDetails: "team-lead_visits_details_export",
}

var archivedDateRe = regexp.MustCompile(`^(?:team_lead_)?daily_visits_(\d{4}-\d{2}-\d{2})\.xlsx$`)

func IsReportType(reportType string) bool {
	_, ok := reportTypeFolders[reportType]
	return ok
}

type ArchivedFile struct {
	Name    string    `json:"name"`
	Path    string    `json:"-"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"modified"`
}

func (f ArchivedFile) IsXLSX() bool {
	return strings.EqualFold(filepath.Ext(f.Name), ".xlsx")
}

func (f ArchivedFile) ContentType() string {
	if f.IsXLSX() {
		return xlsxContentType
	}
	return csvContentType
}

// ReportArchive is the on-disk report store: one folder per report type
// under BaseDir.
type ReportArchive struct {
	BaseDir string
}

func NewReportArchive(baseDir string) *ReportArchive {
	return &ReportArchive{BaseDir: baseDir}
}

func (a *ReportArchive) Dir(reportType string) (string, error) {
	folder, ok := reportTypeFolders[reportType]
	if !ok {
		return "", fmt.Errorf("unknown report type %q", reportType)
	}
	return filepath.Join(a.BaseDir, folder), nil
}

// AllFiles lists csv and xlsx files of a report type, newest first. A missing
// folder is an empty listing.
func (a *ReportArchive) AllFiles(reportType string) ([]ArchivedFile, error) {
	dir, err := a.Dir(reportType)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return []ArchivedFile{}, nil
	}
	if err != nil {
		return nil, err
	}
	files := make([]ArchivedFile, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".csv", ".xlsx":
		default:
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, ArchivedFile{
			Name:    e.Name(),
			Path:    filepath.Join(dir, e.Name()),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	sort.SliceStable(files, func(i, j int) bool {
		if files[i].ModTime.Equal(files[j].ModTime) {
			return files[i].Name > files[j].Name
		}
		return files[i].ModTime.After(files[j].ModTime)
	})
	return files, nil
}

// LatestFile is the newest file of a report type, nil when there is none.
func (a *ReportArchive) LatestFile(reportType string) (*ArchivedFile, error) {
	files, err := a.AllFiles(reportType)
	if err != nil || len(files) == 0 {
		return nil, err
	}
	return &files[0], nil
}

// ResolveFile finds a named file of a report type. Only base names are
// accepted; anything with a path component reports os.ErrNotExist.
func (a *ReportArchive) ResolveFile(reportType, name string) (*ArchivedFile, error) {
	dir, err := a.Dir(reportType)
	if err != nil {
		return nil, err
	}
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return nil, os.ErrNotExist
	}
	path := filepath.Join(dir, name)
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, os.ErrNotExist
	}
	return &ArchivedFile{Name: name, Path: path, Size: info.Size(), ModTime: info.ModTime()}, nil
}

// ArchivedDateRange is the min and max date encoded in daily visit xlsx
// file names.
func ArchivedDateRange(files []ArchivedFile) (string, string, bool) {
	var dates []string
	for _, f := range files {
		m := archivedDateRe.FindStringSubmatch(f.Name)
		if m == nil {
			continue
		}
		if _, err := time.Parse(utils.DateLayout, m[1]); err == nil {
			dates = append(dates, m[1])
		}
	}
	if len(dates) == 0 {
		return "", "", false
	}
	sort.Strings(dates)
	return dates[0], dates[len(dates)-1], true
}

func DailyVisitsFileName(d time.Time) string {
	return "daily_visits_" + d.Format(utils.DateLayout) + ".csv"
}

func TeamLeadVisitsFileName(d time.Time) string {
	return "team_lead_daily_visits_" + d.Format(utils.DateLayout) + ".csv"
}

func VisitDetailsFileName(lead string) string {
	return "visit_details_" + LeadSlug(lead) + ".csv"
}

// XLSXPath is the sibling workbook of a csv path.
func XLSXPath(csvPath string) string {
	if strings.HasSuffix(strings.ToLower(csvPath), ".csv") {
		return csvPath[:len(csvPath)-len(".csv")] + ".xlsx"
	}
	return csvPath + ".xlsx"
}
