package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/AchilleasB/sangria/donor-service/internal/core/domain"
	"github.com/AchilleasB/sangria/donor-service/internal/core/ports"
)

const (
	SheetName   = "Controle de Doações Sangria"
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	registeredLayout = "02/01/2006 15:04"
	placeholder      = "-"
)

type column struct {
	title    string
	width    float64
	centered bool
}

var columns = []column{
	{"ID", 15, true},
	{"Nome", 25, false},
	{"Data Nasc.", 15, false},
	{"Peso (kg)", 15, true},
	{"Tipo Sanguíneo", 15, false},
	{"Email/Telefone", 25, false},
	{"Última Doação", 15, false},
	{"Status Triagem", 15, false},
	{"Situação Atual", 20, false},
	{"Dias Inapto", 15, true},
	{"Mensagem Triagem", 50, false},
	{"Próxima Data Possível", 25, false},
	{"Data Cadastro", 25, false},
}

// Stored verdict status and the status derived for the export day.
const (
	statusColumn  = 8
	displayColumn = 9
)

// Filename is the download name of an export generated on day.
func Filename(day domain.Date) string {
	return fmt.Sprintf("sangria_controle_doacoes_%s.xlsx", day)
}

type statusStyle struct {
	fill, font string
	italic     bool
}

var statusStyles = map[domain.DisplayStatus]statusStyle{
	domain.DisplayEligible:              {"C6EFCE", "006100", false},
	domain.DisplayEligibleAfterWait:     {"C6EFCE", "006100", false},
	domain.DisplayAwaitingInterval:      {"FFEB9C", "9C5700", false},
	domain.DisplayTemporarilyIneligible: {"FFD1D1", "9C0006", false},
	domain.DisplayPermanentlyIneligible: {"FFC7CE", "9C0006", true},
}

// SpreadsheetExporter renders donors as a single-sheet xlsx workbook. The
// stored status and the display status get their own coloured columns.
type SpreadsheetExporter struct{}

var _ ports.DonorExporter = SpreadsheetExporter{}

func NewSpreadsheetExporter() SpreadsheetExporter {
	return SpreadsheetExporter{}
}

type styles struct {
	header, left, center int
	status               map[domain.DisplayStatus]int
}

func newStyles(f *excelize.File) (*styles, error) {
	var err error
	s := &styles{status: make(map[domain.DisplayStatus]int, len(statusStyles))}

	align := func(h string) *excelize.Alignment {
		return &excelize.Alignment{Horizontal: h, Vertical: "center", WrapText: true}
	}
	if s.header, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}, Alignment: align("center")}); err != nil {
		return nil, err
	}
	if s.left, err = f.NewStyle(&excelize.Style{Alignment: align("left")}); err != nil {
		return nil, err
	}
	if s.center, err = f.NewStyle(&excelize.Style{Alignment: align("center")}); err != nil {
		return nil, err
	}
	for status, st := range statusStyles {
		id, err := f.NewStyle(&excelize.Style{
			Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{st.fill}},
			Font:      &excelize.Font{Bold: true, Italic: st.italic, Color: st.font},
			Alignment: align("left"),
		})
		if err != nil {
			return nil, err
		}
		s.status[status] = id
	}
	return s, nil
}

func (SpreadsheetExporter) ExportDonors(w io.Writer, donors []domain.DonorView, generatedOn domain.Date) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	st, err := newStyles(f)
	if err != nil {
		return fmt.Errorf("create styles: %w", err)
	}

	header := make([]any, len(columns))
	for i, c := range columns {
		header[i] = c.title
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(SheetName, name, name, c.width); err != nil {
			return err
		}
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return err
	}
	last, _ := excelize.ColumnNumberToName(len(columns))
	if err := f.SetCellStyle(SheetName, "A1", last+"1", st.header); err != nil {
		return err
	}

	for i, d := range donors {
		row := i + 2
		cell, _ := excelize.CoordinatesToCellName(1, row)
		values := rowValues(d)
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return fmt.Errorf("write donor %s: %w", d.ID, err)
		}
		if err := styleRow(f, st, row, d); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func styleRow(f *excelize.File, st *styles, row int, d domain.DonorView) error {
	for i, c := range columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		style := st.left
		if c.centered {
			style = st.center
		}
		var status domain.DisplayStatus
		switch i + 1 {
		case statusColumn:
			status = domain.DisplayStatus(d.Triage.Status.String())
		case displayColumn:
			status = d.DisplayStatus
		}
		if id, ok := st.status[status]; ok {
			style = id
		}
		if err := f.SetCellStyle(SheetName, cell, cell, style); err != nil {
			return err
		}
	}
	return nil
}

func orPlaceholder(s string) string {
	if s == "" {
		return placeholder
	}
	return s
}

func rowValues(d domain.DonorView) []any {
	var weight any = placeholder
	if d.Weight != nil {
		weight = *d.Weight
	}
	var deferral any = placeholder
	if d.Triage.DeferralDays != 0 {
		deferral = d.Triage.DeferralDays
	}
	next := placeholder
	if d.Triage.NextEligibleDate != nil {
		next = d.Triage.NextEligibleDate.String()
	}
	registered := placeholder
	if !d.RegisteredAt.IsZero() {
		registered = d.RegisteredAt.Format(registeredLayout)
	}

	return []any{
		d.ID,
		d.Name,
		d.BirthDate,
		weight,
		d.BloodType,
		orPlaceholder(d.ContactInfo),
		orPlaceholder(d.LastDonationDate),
		d.Triage.Status.String(),
		string(d.DisplayStatus),
		deferral,
		d.Triage.Message,
		next,
		registered,
	}
}
