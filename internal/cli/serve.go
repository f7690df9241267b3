package cli

import (
	"bufio"
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tartampluch/go-lunar/internal/config"
	"github.com/tartampluch/go-lunar/internal/daemon"
	"github.com/tartampluch/go-lunar/internal/engine"
	"github.com/tartampluch/go-lunar/internal/i18n"
	"github.com/tartampluch/go-lunar/internal/lunar"
	"github.com/tartampluch/go-lunar/internal/server"
)

func newServeCmd(st *state) *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:         config.CmdUseServe,
		Short:       config.CmdShortServe,
		Args:        cobra.NoArgs,
		Annotations: map[string]string{config.CmdAnnotationService: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if port != "" {
				if err := config.ValidatePort(port); err != nil {
					return err
				}
			}
			path, err := st.settingsPath()
			if err != nil {
				return err
			}
			tr, err := i18n.New(config.DefaultLanguage)
			if err != nil {
				return err
			}

			srv := server.NewCalendarServer("")
			d, err := daemon.New(path, srv, engine.NewAddressBookFetcher(), tr)
			if err != nil {
				return err
			}
			d.Clock = st.Clock
			if st.lang != "" {
				d.PinLanguage(st.lang)
			}

			srv.Port = d.Settings().ServerPort
			if port != "" {
				srv.Port = port
			}
			return d.Run(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&port, config.FlagPort, "", config.FlagDescPort)
	return cmd
}

func newExportCmd(st *state) *cobra.Command {
	var at string
	cmd := &cobra.Command{
		Use:   config.CmdUseExport,
		Short: config.CmdShortExport,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := st.settingsPath()
			if err != nil {
				return err
			}
			tr, err := i18n.New(config.DefaultLanguage)
			if err != nil {
				return err
			}
			d, err := daemon.New(path, nil, engine.NewAddressBookFetcher(), tr)
			if err != nil {
				return err
			}
			if st.lang != "" {
				d.PinLanguage(st.lang)
			}

			d.Clock = st.Clock
			if at != "" {
				day, err := lunar.ParseSolar(at)
				if err != nil {
					return err
				}
				d.Clock = engine.FixedClock(day.In(st.Clock.Now().Location()))
			}

			res, err := d.Generate(cmd.Context())
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(res.ICS)
			return err
		},
	}
	cmd.Flags().StringVar(&at, config.FlagAt, "", config.FlagDescAt)
	return cmd
}

func newPasswordCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   config.CmdUsePassword,
		Short: config.CmdShortPassword,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := st.loadSettings()
			if err != nil {
				return err
			}
			if s.Username == "" {
				return errors.New(config.ErrUsernameEmpty)
			}

			sc := bufio.NewScanner(cmd.InOrStdin())
			sc.Scan()
			if err := sc.Err(); err != nil {
				return err
			}
			// Only the line terminator is stripped; blanks may belong to the password.
			password := strings.TrimRight(sc.Text(), "\r\n")
			if password == "" {
				return errors.New(config.ErrPasswordEmpty)
			}

			if err := s.StorePassword(password); err != nil {
				return fmt.Errorf("%s: %w", config.ErrPasswordStore, err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), config.MsgPasswordStored)
			return err
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   config.CmdUseVersion,
		Short: config.CmdShortVersion,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), config.MsgVersionOutput,
				config.AppName,
				config.Version,
				config.Commit,
				config.Date,
				runtime.GOOS,
				runtime.GOARCH,
			)
			return err
		},
	}
}
