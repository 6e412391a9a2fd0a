package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/salesync/reports_backend/models/reports"
)

const (
	xlsxMimeType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	csvMimeType  = "text/csv"
)

func dateRangeFromQuery(c *gin.Context) reports.DateRange {
	return reports.ParseDateRange(c.Query("start_date"), c.Query("end_date"))
}

func sendAttachment(c *gin.Context, fileName, contentType string, data []byte) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	c.Data(http.StatusOK, contentType, data)
}

func reportFailed(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{
		"error":   "Failed to generate report",
		"details": err.Error(),
	})
}

func dailyVisitsXLSXHandler(svc *reports.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		data, err := svc.DailyVisitsXLSX(c.Request.Context(), dateRangeFromQuery(c))
		if err != nil {
			reportFailed(c, err)
			return
		}
		sendAttachment(c, "daily_visits.xlsx", xlsxMimeType, data)
	}
}

func dailyVisitsCSVHandler(svc *reports.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		data, err := svc.DailyVisitsCSV(c.Request.Context(), dateRangeFromQuery(c))
		if err != nil {
			reportFailed(c, err)
			return
		}
		sendAttachment(c, "daily_visits.csv", csvMimeType, data)
	}
}

// The team lead downloads always answer 200; generation errors are inside
// the file.
func teamLeadVisitsXLSXHandler(svc *reports.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		data := svc.TeamLeadVisitsXLSX(c.Request.Context(), dateRangeFromQuery(c))
		sendAttachment(c, "team_lead_visits.xlsx", xlsxMimeType, data)
	}
}

func teamLeadVisitsCSVHandler(svc *reports.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		data := svc.TeamLeadVisitsCSV(c.Request.Context(), dateRangeFromQuery(c))
		sendAttachment(c, "team_lead_visits.csv", csvMimeType, data)
	}
}

func visitDetailsXLSXHandler(svc *reports.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		data, err := svc.VisitDetailsXLSX(c.Request.Context(), dateRangeFromQuery(c))
		if err != nil {
			reportFailed(c, err)
			return
		}
		sendAttachment(c, "team_lead_visit_details.xlsx", xlsxMimeType, data)
	}
}

func visitDetailsCSVHandler(svc *reports.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		data, err := svc.VisitDetailsCSV(c.Request.Context(), dateRangeFromQuery(c))
		if err != nil {
			reportFailed(c, err)
			return
		}
		sendAttachment(c, "team_lead_visit_details.csv", csvMimeType, data)
	}
}

func visitDetailsLeadXLSXHandler(svc *reports.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		slug := c.Param("lead_slug")
		data, err := svc.VisitDetailsLeadXLSX(c.Request.Context(), dateRangeFromQuery(c), slug)
		if errors.Is(err, reports.ErrUnknownTeamLead) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Team lead file not found"})
			return
		}
		if err != nil {
			reportFailed(c, err)
			return
		}
		sendAttachment(c, "visit_details_"+slug+".xlsx", xlsxMimeType, data)
	}
}

// liveDownloads is where /all points when a report type has no archived
// workbook yet.
var liveDownloads = map[string]gin.H{
	reports.ReportTypeDailyVisits:          {"filename": "daily_visits.xlsx", "download_url": "/api/reports/daily_visits_xlsx"},
	reports.ReportTypeTeamLeadVisits:       {"filename": "team_lead_visits.xlsx", "download_url": "/api/reports/team_lead_visits_xlsx"},
	reports.ReportTypeTeamLeadVisitDetails: {"filename": "team_lead_visit_details.xlsx", "download_url": "/api/reports/team_lead_visit_details_xlsx"},
}

func latestReportsHandler(archive *reports.ReportArchive) gin.HandlerFunc {
	return func(c *gin.Context) {
		result := gin.H{}
		for _, key := range reports.ReportTypes {
			latest, err := archive.LatestFile(key)
			if err != nil {
				_ = c.Error(err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			if latest == nil {
				result[key] = nil
				continue
			}
			result[key] = gin.H{
				"filename":     latest.Name,
				"download_url": "/api/reports/download/" + key,
			}
		}
		c.JSON(http.StatusOK, result)
	}
}

func allReportsHandler(archive *reports.ReportArchive) gin.HandlerFunc {
	return func(c *gin.Context) {
		result := gin.H{}
		for _, key := range reports.ReportTypes {
			files, err := archive.AllFiles(key)
			if err != nil {
				_ = c.Error(err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			var workbooks []reports.ArchivedFile
			for _, f := range files {
				if f.IsXLSX() {
					workbooks = append(workbooks, f)
				}
			}

			entry := gin.H{}
			if len(workbooks) == 0 {
				entry["files"] = []gin.H{liveDownloads[key]}
			} else {
				list := make([]gin.H, 0, len(workbooks))
				for _, f := range workbooks {
					list = append(list, gin.H{
						"filename":     f.Name,
						"download_url": "/api/reports/download/" + key + "?file=" + f.Name,
					})
				}
				entry["files"] = list
			}
			if key != reports.ReportTypeDailyVisits {
				if start, end, ok := reports.ArchivedDateRange(workbooks); ok {
					entry["start_date"], entry["end_date"] = start, end
				} else {
					entry["start_date"], entry["end_date"] = nil, nil
				}
			}
			result[key] = entry
		}
		c.JSON(http.StatusOK, result)
	}
}

func downloadReportHandler(archive *reports.ReportArchive) gin.HandlerFunc {
	return func(c *gin.Context) {
		reportType := c.Param("report_type")
		if !reports.IsReportType(reportType) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid report type"})
			return
		}
		if name := c.Query("file"); name != "" {
			f, err := archive.ResolveFile(reportType, name)
			if errors.Is(err, os.ErrNotExist) {
				c.JSON(http.StatusNotFound, gin.H{"error": "File not found"})
				return
			}
			if err != nil {
				_ = c.Error(err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			c.FileAttachment(f.Path, f.Name)
			return
		}
		latest, err := archive.LatestFile(reportType)
		if err != nil {
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if latest == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "No report found"})
			return
		}
		c.FileAttachment(latest.Path, latest.Name)
	}
}
