package reports

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/bsm/redislock"
	"github.com/salesync/reports_backend/config"
	"github.com/salesync/reports_backend/utils"
	"github.com/sirupsen/logrus"
)

const (
	reportLockTTL  = 2 * time.Minute
	reportLockWait = 30 * time.Second
)

// FileWriter stores a table as a csv file and its xlsx sibling. When redis is
// configured writers of the same path take turns; when a bucket or topic is
// configured each file is also uploaded and announced.
type FileWriter struct {
	locker *redislock.Client
	bucket string
	topic  string
	logger *logrus.Logger
}

// NewFileWriter picks up redis, REPORTS_GCS_BUCKET and REPORTS_PUBSUB_TOPIC
// from config.
func NewFileWriter(logger *logrus.Logger) *FileWriter {
	if logger == nil {
		logger = config.GetLogger()
	}
	return &FileWriter{
		locker: config.GetRedisLock(),
		bucket: utils.ReportsBucket(),
		topic:  config.ReportsTopic(),
		logger: logger,
	}
}

// ReportFileInfo describes one write for the notification.
type ReportFileInfo struct {
	ReportType string
	Range      DateRange
}

func (w *FileWriter) lock(ctx context.Context, csvPath string) (func(), error) {
	if w.locker == nil {
		return func() {}, nil
	}
	abs, err := filepath.Abs(csvPath)
	if err != nil {
		abs = filepath.Clean(csvPath)
	}
	waitCtx, cancel := context.WithTimeout(ctx, reportLockWait)
	defer cancel()
	lock, err := w.locker.Obtain(waitCtx, "lock:report:"+abs, reportLockTTL, &redislock.Options{
		RetryStrategy: redislock.LinearBackoff(250 * time.Millisecond),
	})
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w", csvPath, err)
	}
	return func() {
		if err := lock.Release(context.Background()); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			w.logger.WithField("path", csvPath).Warn("release report lock: " + err.Error())
		}
	}, nil
}

// WriteTable writes csvPath and its xlsx sibling and returns both paths.
func (w *FileWriter) WriteTable(ctx context.Context, csvPath string, table *Table, info ReportFileInfo) ([]string, error) {
	unlock, err := w.lock(ctx, csvPath)
	if err != nil {
		return nil, err
	}
	defer unlock()

	xlsxPath := XLSXPath(csvPath)
	if err := table.SaveCSV(csvPath); err != nil {
		return nil, fmt.Errorf("write %s: %w", csvPath, err)
	}
	if err := table.SaveXLSX(xlsxPath); err != nil {
		return nil, fmt.Errorf("write %s: %w", xlsxPath, err)
	}
	paths := []string{csvPath, xlsxPath}
	for _, p := range paths {
		w.publish(ctx, p, info)
	}
	return paths, nil
}

// publish uploads and announces one written file. Failures are logged; the
// file on disk stays the result.
func (w *FileWriter) publish(ctx context.Context, filePath string, info ReportFileInfo) {
	if w.bucket == "" && w.topic == "" {
		return
	}
	logger := config.LoggerWithContext(ctx, w.logger).WithFields(logrus.Fields{
		"module": "reports",
		"path":   filePath,
	})
	name := filepath.Base(filePath)
	objectURL := ""
	if w.bucket != "" {
		data, err := os.ReadFile(filePath)
		if err != nil {
			logger.Warn("read report for upload: " + err.Error())
			return
		}
		contentType := ArchivedFile{Name: name}.ContentType()
		objectURL, err = utils.UploadBytesToGCS(ctx, w.bucket, path.Join(info.ReportType, name), data, contentType)
		if err != nil {
			logger.Warn("upload report: " + err.Error())
		}
	}
	if w.topic == "" {
		return
	}
	cid, _ := utils.GetCorrelationIdFromContext(ctx)
	msgID, err := config.PublishReportGenerated(ctx, config.ReportGeneratedMessage{
		ReportType:    info.ReportType,
		FileName:      name,
		ObjectURL:     objectURL,
		StartDate:     formatDateParam(info.Range.Start),
		EndDate:       formatDateParam(info.Range.End),
		GeneratedAt:   time.Now().UTC(),
		CorrelationId: cid,
	})
	if err != nil {
		logger.Warn("publish report notification: " + err.Error())
		return
	}
	logger.WithField("message_id", msgID).Info("report notification published")
}
