package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tartampluch/go-lunar/internal/config"
	"github.com/tartampluch/go-lunar/internal/i18n"
	"github.com/tartampluch/go-lunar/internal/lunar"
	"github.com/tartampluch/go-lunar/internal/server"
)

func printConversion(w io.Writer, c server.Conversion, lunarFirst bool) error {
	var err error
	if lunarFirst {
		_, err = fmt.Fprintf(w, config.FormatConversion, c.Lunar, c.Caption, c.Solar.String()+" "+c.Weekday)
	} else {
		_, err = fmt.Fprintf(w, config.FormatConversion, c.Solar.String()+" "+c.Weekday, c.Lunar, c.Caption)
	}
	return err
}

func newLunarCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   config.CmdUseLunar,
		Short: config.CmdShortLunar,
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := lunar.ParseSolar(args[0])
			if err != nil {
				return err
			}
			l, err := lunar.SolarToLunar(s)
			if err != nil {
				return err
			}
			conv := server.NewConversion(s, l)
			return st.emit(cmd.OutOrStdout(), conv, func(w io.Writer) error {
				return printConversion(w, conv, false)
			})
		},
	}
}

func newSolarCmd(st *state) *cobra.Command {
	var leap bool
	cmd := &cobra.Command{
		Use:     config.CmdUseSolar,
		Short:   config.CmdShortSolar,
		Example: config.CmdExampleSolar,
		Args:    exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := lunar.ParseLunar(args[0])
			if err != nil {
				return err
			}
			l.IsLeap = l.IsLeap || leap

			s, err := lunar.LunarToSolar(l)
			if err != nil {
				return err
			}
			conv := server.NewConversion(s, l)
			return st.emit(cmd.OutOrStdout(), conv, func(w io.Writer) error {
				return printConversion(w, conv, true)
			})
		},
	}
	cmd.Flags().BoolVar(&leap, config.FlagLeap, false, config.FlagDescLeap)
	return cmd
}

func newDayCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   config.CmdUseDay,
		Short: config.CmdShortDay,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := st.today()
			if len(args) == 1 {
				var err error
				if s, err = lunar.ParseSolar(args[0]); err != nil {
					return err
				}
			}
			info, err := lunar.Describe(s)
			if err != nil {
				return err
			}
			tr, err := st.translator()
			if err != nil {
				return err
			}
			return st.emit(cmd.OutOrStdout(), info, func(w io.Writer) error {
				printDay(w, tr, info)
				return nil
			})
		},
	}
}

func printDay(w io.Writer, tr *i18n.Translator, info lunar.DayInfo) {
	_, _ = fmt.Fprintf(w, "%s %s\n", info.Solar, info.Solar.Time().Weekday())
	field(w, tr.Msg(config.TKeyLblLunar), info.Caption+" ("+info.Lunar.String()+")")
	field(w, tr.Msg(config.TKeyLblGanZhi),
		info.YearGanZhi+"年 "+info.MonthGanZhi+"月 "+info.DayGanZhi+"日")
	field(w, tr.Msg(config.TKeyLblZodiac), info.Zodiac)
	field(w, tr.Msg(config.TKeyLblConstellation), info.Constellation)
	field(w, tr.Msg(config.TKeyLblTerm), info.Term)

	names := make([]string, 0, len(info.Festivals))
	for _, f := range info.Festivals {
		names = append(names, f.Name)
	}
	field(w, tr.Msg(config.TKeyLblFestivals), strings.Join(names, ", "))
}

func parseYear(arg string) (int, error) {
	y, err := strconv.Atoi(arg)
	if err != nil {
		return 0, errors.New(config.ErrBadRequestYear)
	}
	return y, nil
}

func newTermsCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   config.CmdUseTerms,
		Short: config.CmdShortTerms,
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			y, err := parseYear(args[0])
			if err != nil {
				return err
			}
			terms, err := lunar.SolarTerms(y)
			if err != nil {
				return err
			}
			return st.emit(cmd.OutOrStdout(), terms, func(w io.Writer) error {
				for _, t := range terms {
					if _, err := fmt.Fprintf(w, config.FormatTermLine, t.Date, t.Name); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}

func newYearCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   config.CmdUseYear,
		Short: config.CmdShortYear,
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			y, err := parseYear(args[0])
			if err != nil {
				return err
			}
			info, err := lunar.DescribeYear(y)
			if err != nil {
				return err
			}
			tr, err := st.translator()
			if err != nil {
				return err
			}
			return st.emit(cmd.OutOrStdout(), info, func(w io.Writer) error {
				printYear(w, tr, info)
				return nil
			})
		},
	}
}

func printYear(w io.Writer, tr *i18n.Translator, info lunar.YearInfo) {
	_, _ = fmt.Fprintln(w, labelStyle.UnsetWidth().Render(
		fmt.Sprintf(config.FormatYearTitle, info.Year, info.GanZhi, info.Zodiac)))

	for _, m := range info.Months {
		name := lunar.MonthName(m.Month)
		if m.IsLeap {
			name = "闰" + name
		}
		_, _ = fmt.Fprintf(w, config.FormatMonthSpan, name, m.Days)
	}

	_, _ = fmt.Fprintln(w, tr.Msg(config.TKeyLblFestivals))
	for _, f := range info.Festivals {
		_, _ = fmt.Fprintf(w, config.FormatTermLine, f.Date, f.Name)
	}
}
