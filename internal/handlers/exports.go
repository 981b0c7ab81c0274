package handlers

import (
	"bytes"
	"encoding/csv"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/AjayAlluri/Toyota-Financing/internal/repository"
)

var leadCSVHeader = []string{
	"user_id",
	"email",
	"first_name",
	"last_name",
	"registered_at",
	"credit_score",
	"down_payment",
	"gross_monthly_income",
	"budget_car",
	"balanced_car",
	"premium_car",
	"selected_tier",
	"selected_plan",
	"document_count",
}

// ExportLeads выгружает клиентов с последней рекомендацией в CSV-файл.
func (h *SalesHandler) ExportLeads(c echo.Context) error {
	rows, err := h.Sales.ExportLeads(c.Request().Context())
	if err != nil {
		return respondError(c, err, "")
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writeLeadsCSV(writer, rows); err != nil {
		return serverError(c)
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return serverError(c)
	}

	filename := "leads-" + time.Now().UTC().Format(dateLayout) + ".csv"
	c.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename=\""+filename+"\"")
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func writeLeadsCSV(writer *csv.Writer, rows []repository.LeadExportRow) error {
	if err := writer.Write(leadCSVHeader); err != nil {
		return err
	}

	for _, row := range rows {
		record := []string{
			row.UserID.String(),
			row.Email,
			formatOptional(row.FirstName),
			formatOptional(row.LastName),
			row.CreatedAt.Format(timeLayout),
			formatOptional(row.CreditScore),
			formatOptionalFloat(row.DownPayment),
			formatOptionalFloat(row.GrossMonthlyIncome),
			formatOptional(row.BudgetCar),
			formatOptional(row.BalancedCar),
			formatOptional(row.PremiumCar),
			formatOptional(row.SelectedTier),
			formatOptional(row.SelectedPlan),
			strconv.Itoa(row.DocumentCount),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	return nil
}

func formatOptional(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func formatOptionalFloat(value *float64) string {
	if value == nil {
		return ""
	}
	return strconv.FormatFloat(*value, 'f', 2, 64)
}
