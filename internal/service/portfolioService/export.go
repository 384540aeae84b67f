package portfolioService

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/KotFed0t/portfolio_tracker/internal/model"
	"github.com/KotFed0t/portfolio_tracker/internal/service"
	"github.com/KotFed0t/portfolio_tracker/utils"
)

// BuildReport collects everything the workbook shows.
func (s *PortfolioService) BuildReport(ctx context.Context, live bool) (model.Report, error) {
	holdings, err := s.Holdings(ctx, live)
	if err != nil {
		return model.Report{}, err
	}

	summary, err := s.summarize(ctx, holdings)
	if err != nil {
		return model.Report{}, err
	}

	trades, err := s.repo.GetTrades(ctx, model.TradeFilter{})
	if err != nil {
		return model.Report{}, err
	}

	actions, err := s.repo.GetCorporateActions(ctx, model.ActionFilter{})
	if err != nil {
		return model.Report{}, err
	}

	return model.Report{
		Summary:     summary,
		Holdings:    holdings,
		Trades:      trades,
		Actions:     actions,
		Currency:    s.cfg.Report.Currency,
		GeneratedAt: summary.GeneratedAt,
	}, nil
}

// ExportReport writes the workbook to the export dir. With upload set it is also pushed to
// cloud storage and the share link is returned.
func (s *PortfolioService) ExportReport(ctx context.Context, upload bool) (path, link string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.ExportReport"

	slog.Debug("ExportReport start", slog.String("rqID", rqID), slog.String("op", op))
	defer func() {
		slog.Debug("ExportReport finished", slog.String("rqID", rqID), slog.String("op", op), slog.String("path", path))
	}()

	if upload && s.cloudStorage == nil {
		return "", "", service.ErrStorageDisabled
	}

	report, err := s.BuildReport(ctx, false)
	if err != nil {
		return "", "", err
	}
	if len(report.Trades) == 0 {
		return "", "", service.ErrNothingToExport
	}

	fileBytes, ext, err := s.reportGenerator.Generate(ctx, report)
	if err != nil {
		slog.Error("got error from reportGenerator.Generate", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return "", "", err
	}

	filename := fmt.Sprintf("portfolio_%s%s", report.GeneratedAt.Format("20060102_150405"), ext)

	if err = os.MkdirAll(s.cfg.Report.ExportDir, 0o755); err != nil {
		return "", "", fmt.Errorf("create export dir: %w", err)
	}
	path = filepath.Join(s.cfg.Report.ExportDir, filename)
	if err = os.WriteFile(path, fileBytes, 0o644); err != nil {
		return "", "", fmt.Errorf("write report: %w", err)
	}

	if upload {
		link, err = s.cloudStorage.UploadFile(ctx, bytes.NewReader(fileBytes), filename)
		if err != nil {
			slog.Error("got error from cloudStorage.UploadFile", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
			return path, "", err
		}
		slog.Info("report uploaded", slog.String("rqID", rqID), slog.String("link", link))
	}

	return path, link, nil
}

// ExportJob is the daily scheduled export. It uploads when cloud storage is configured.
func (s *PortfolioService) ExportJob(ctx context.Context) error {
	_, _, err := s.ExportReport(ctx, s.cloudStorage != nil)
	if errors.Is(err, service.ErrNothingToExport) {
		return nil
	}
	return err
}

// CleanupUploads purges uploads older than the configured TTL.
func (s *PortfolioService) CleanupUploads(ctx context.Context) error {
	if s.cloudStorage == nil {
		return service.ErrStorageDisabled
	}
	return s.cloudStorage.DeleteOldFiles(ctx)
}
