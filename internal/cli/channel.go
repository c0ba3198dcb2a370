package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Gurux/gxcommon-go"
	"golang.org/x/text/language"

	"github.com/hostport/hostport-go"
)

// openChannel opens the channel described by the loaded configuration and
// routes its events to the logger.
func openChannel() (*hostport.SerialChannel, error) {
	chCfg, err := cfg.ChannelConfig()
	if err != nil {
		return nil, err
	}
	ch := hostport.NewSerialChannel()
	ch.SetOpener(opener)
	if cfg.Lang != "" {
		tag, err := language.Parse(cfg.Lang)
		if err != nil {
			return nil, fmt.Errorf("error parsing language: %w", err)
		}
		ch.Localize(tag)
	}
	if cfg.Trace != "" {
		tl, err := gxcommon.TraceLevelParse(cfg.Trace)
		if err != nil {
			return nil, err
		}
		ch.SetTrace(tl)
	}

	name := chCfg.DeviceName()
	ch.SetOnTrace(func(_ *hostport.SerialChannel, e gxcommon.TraceEventArgs) {
		logger.Debug().Str("device", name).Msg(e.String())
	})
	ch.SetOnError(func(_ *hostport.SerialChannel, err error) {
		logger.Error().Err(err).Str("device", name).Msg("link error")
	})
	ch.SetOnMediaStateChange(func(_ *hostport.SerialChannel, e gxcommon.MediaStateEventArgs) {
		logger.Debug().Str("device", name).Str("state", e.State().String()).Msg("media state changed")
	})

	if err := ch.Begin(chCfg); err != nil {
		if hostport.IsDeviceUnavailable(err) {
			if ports, perr := hostport.GetPortNames(); perr == nil {
				logger.Warn().Strs("available", ports).Msg("serial port not available")
			}
		}
		return nil, err
	}
	logger.Info().Str("device", name).Int("baud", int(chCfg.BaudRate)).Msg("serial port opened")
	return ch, nil
}

func closeChannel(ch *hostport.SerialChannel) {
	if err := ch.Close(); err != nil {
		logger.Warn().Err(err).Msg("close failed")
	}
}

func parseValues(args []string) ([]float32, error) {
	ret := make([]float32, 0, len(args))
	for _, a := range args {
		for _, s := range strings.FieldsFunc(a, func(r rune) bool { return r == ',' || r == ' ' }) {
			v, err := strconv.ParseFloat(s, 32)
			if err != nil {
				return nil, fmt.Errorf("invalid sample %q", s)
			}
			ret = append(ret, float32(v))
		}
	}
	return ret, nil
}

func formatValues(values []float32) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.FormatFloat(float64(v), 'g', -1, 32)
	}
	return strings.Join(parts, " ")
}
