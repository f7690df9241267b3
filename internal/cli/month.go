package cli

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/tartampluch/go-lunar/internal/config"
	"github.com/tartampluch/go-lunar/internal/lunar"
)

var (
	cellStyle  = lipgloss.NewStyle().Width(config.MonthCellWidth).Align(lipgloss.Center)
	todayStyle = cellStyle.Reverse(true)
	titleStyle = lipgloss.NewStyle().Bold(true).MarginBottom(1)
)

func newMonthCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   config.CmdUseMonth,
		Short: config.CmdShortMonth,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			today := st.today()
			year, month := today.Year, today.Month
			if len(args) == 1 {
				t, err := time.Parse(config.DateFormatMonth, args[0])
				if err != nil {
					return errors.New(config.ErrBadRequestMonth)
				}
				year, month = t.Year(), int(t.Month())
			}

			days, err := monthDays(year, month)
			if err != nil {
				return err
			}
			tr, err := st.translator()
			if err != nil {
				return err
			}
			return st.emit(cmd.OutOrStdout(), days, func(w io.Writer) error {
				_, err := fmt.Fprintln(w, renderMonth(days, tr.Weekdays(), today))
				return err
			})
		},
	}
}

// monthDays describes every day of a Gregorian month.
func monthDays(year, month int) ([]lunar.DayInfo, error) {
	first := lunar.SolarDate{Year: year, Month: month, Day: 1}
	n := first.Time().AddDate(0, 1, -1).Day()

	days := make([]lunar.DayInfo, 0, n)
	for d := 1; d <= n; d++ {
		info, err := lunar.Describe(lunar.SolarDate{Year: year, Month: month, Day: d})
		if err != nil {
			return nil, err
		}
		days = append(days, info)
	}
	return days, nil
}

// cellLabel picks what a calendar widget shows under the day number:
// the solar term, else the first festival, else the lunar day.
func cellLabel(info lunar.DayInfo) string {
	switch {
	case info.Term != "":
		return info.Term
	case len(info.Festivals) > 0:
		return clip(info.Festivals[0].Name, config.MonthCellRunes)
	default:
		return info.Lunar.ShortCaption()
	}
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// renderMonth lays the days out in weeks starting on Sunday.
func renderMonth(days []lunar.DayInfo, weekdays []string, today lunar.SolarDate) string {
	first := days[0]
	title := titleStyle.Render(fmt.Sprintf(config.FormatMonthTitle,
		first.Solar.Year, first.Solar.Month, first.YearGanZhi, first.Zodiac))

	header := make([]string, 0, len(weekdays))
	for _, wd := range weekdays {
		header = append(header, cellStyle.Render(wd))
	}
	rows := []string{title, lipgloss.JoinHorizontal(lipgloss.Top, header...)}

	week := make([]string, 0, 7)
	for i := 0; i < int(first.Solar.Time().Weekday()); i++ {
		week = append(week, cellStyle.Render(""))
	}
	for _, info := range days {
		style := cellStyle
		if info.Solar == today {
			style = todayStyle
		}
		week = append(week, style.Render(fmt.Sprintf("%d\n%s", info.Solar.Day, cellLabel(info))))
		if len(week) == 7 {
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, week...))
			week = week[:0]
		}
	}
	if len(week) > 0 {
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, week...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
