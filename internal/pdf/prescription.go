// Package pdf renders downloadable documents.
package pdf

import (
	"fmt"
	"io"
	"time"

	"github.com/go-pdf/fpdf"
)

// PrescriptionSheet is everything printed on a prescription.
type PrescriptionSheet struct {
	ID             string
	PatientName    string
	DoctorName     string
	Specialization string
	Medication     string
	Dosage         string
	Instructions   string
	IssuedAt       time.Time
}

// RenderPrescription writes a single-page A4 PDF for sheet to w.
func RenderPrescription(w io.Writer, sheet PrescriptionSheet) error {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetTitle("Prescription "+sheet.ID, true)
	doc.SetCreator("consultation-service", true)
	tr := doc.UnicodeTranslatorFromDescriptor("")

	doc.AddPage()
	doc.SetFont("Helvetica", "B", 20)
	doc.CellFormat(0, 12, tr("Prescription for "+sheet.PatientName), "", 1, "C", false, 0, "")
	doc.Ln(6)

	doctor := sheet.DoctorName
	if sheet.Specialization != "" {
		doctor = fmt.Sprintf("%s (%s)", doctor, sheet.Specialization)
	}

	rows := [][2]string{
		{"Doctor", "Dr. " + doctor},
		{"Medication", sheet.Medication},
		{"Dosage", sheet.Dosage},
	}
	if sheet.Instructions != "" {
		rows = append(rows, [2]string{"Instructions", sheet.Instructions})
	}
	rows = append(rows, [2]string{"Issued", sheet.IssuedAt.UTC().Format("2006-01-02")})

	for _, row := range rows {
		doc.SetFont("Helvetica", "B", 12)
		doc.CellFormat(40, 8, tr(row[0]+":"), "", 0, "L", false, 0, "")
		doc.SetFont("Helvetica", "", 12)
		doc.MultiCell(0, 8, tr(row[1]), "", "L", false)
		doc.Ln(2)
	}

	doc.SetY(-30)
	doc.SetFont("Helvetica", "I", 9)
	doc.CellFormat(0, 6, tr("Reference "+sheet.ID), "", 1, "C", false, 0, "")

	if err := doc.Error(); err != nil {
		return fmt.Errorf("render prescription: %w", err)
	}
	return doc.Output(w)
}
