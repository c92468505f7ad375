package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/xuri/excelize/v2"
)

const (
	studentsSheet = "Students"
	summarySheet  = "Summary"
)

var studentColumns = []interface{}{
	"Student ID", "Username", "Email", "Enrolled Courses", "Completed Courses",
	"Average Progress (%)", "Average Score (%)", "Tests Completed",
}

type reportService struct {
	stats  StatsService
	logger *slog.Logger
}

func NewReportService(stats StatsService, logger *slog.Logger) ReportService {
	return &reportService{
		stats:  stats,
		logger: logger,
	}
}

func (s *reportService) ExportStudentStats(ctx context.Context, w io.Writer) error {
	stats, err := s.stats.GetAdminStats(ctx)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Error("Failed to close workbook", "error", err)
		}
	}()

	if err := f.SetSheetName("Sheet1", studentsSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	if err := f.SetSheetRow(studentsSheet, "A1", &studentColumns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(studentColumns), 1)
	if err := f.SetCellStyle(studentsSheet, "A1", lastHeader, header); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	for i, st := range stats.Students {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []interface{}{
			st.StudentID, st.Username, st.Email, st.EnrolledCourses, st.CompletedCourses,
			st.AverageProgress, st.AverageScore, st.TestsCompleted,
		}
		if err := f.SetSheetRow(studentsSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write student row: %w", err)
		}
	}
	if err := f.SetColWidth(studentsSheet, "A", "H", 20); err != nil {
		return fmt.Errorf("failed to set column width: %w", err)
	}

	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}
	summary := [][]interface{}{
		{"Metric", "Value"},
		{"Total Students", stats.TotalStudents},
		{"Pending Approvals", stats.PendingApprovals},
		{"Total Courses", stats.TotalCourses},
		{"Active Courses", stats.ActiveCourses},
		{"Total Enrollments", stats.TotalEnrollments},
		{"Completed Enrollments", stats.CompletedEnrollments},
		{"Total Tests", stats.TotalTests},
		{"Total Results", stats.TotalResults},
		{"Average Score (%)", stats.AverageScore},
		{"Overall Progress Average (%)", stats.OverallProgressAverage},
		{"Completion Rate (%)", stats.CompletionRate},
		{"Generated At", stats.GeneratedAt.UTC().Format("2006-01-02 15:04:05")},
	}
	for i, row := range summary {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write summary row: %w", err)
		}
	}
	if err := f.SetCellStyle(summarySheet, "A1", "B1", header); err != nil {
		return fmt.Errorf("failed to style summary header: %w", err)
	}
	if err := f.SetColWidth(summarySheet, "A", "A", 30); err != nil {
		return fmt.Errorf("failed to set column width: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}

	s.logger.Info("Student stats exported", "students", len(stats.Students))
	return nil
}
