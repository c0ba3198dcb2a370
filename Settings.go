package hostport

// --------------------------------------------------------------------------
//
//	Gurux Ltd
//
// Filename:        $HeadURL$
//
// Version:         $Revision$,
//
//	$Date$
//	$Author$
//
// # Copyright (c) Gurux Ltd
//
// ---------------------------------------------------------------------------
//
//	DESCRIPTION
//
// This file is a part of Gurux Device Framework.
//
// Gurux Device Framework is Open Source software; you can redistribute it
// and/or modify it under the terms of the GNU General Public License
// as published by the Free Software Foundation; version 2 of the License.
// Gurux Device Framework is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU General Public License for more details.
//
// More information of Gurux products: https://www.gurux.org
//
// This code is licensed under the GNU General Public License v2.
// Full text may be retrieved at http://www.gnu.org/licenses/gpl-2.0.txt
// ---------------------------------------------------------------------------

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/Gurux/gxcommon-go"
)

func xmlEscape(s string) string {
	var buf bytes.Buffer
	if err := xml.EscapeText(&buf, []byte(s)); err != nil {
		return s
	}
	return buf.String()
}

// Settings returns the configuration as an XML fragment. Unset values are omitted.
func (c *SerialChannel) Settings() string {
	cfg := c.Config()
	var b strings.Builder
	if cfg.Port != 0 {
		fmt.Fprintf(&b, "<Port>%d</Port>\n", cfg.Port)
	}
	if cfg.Device != "" {
		fmt.Fprintf(&b, "<Device>%s</Device>\n", xmlEscape(cfg.Device))
	}
	if cfg.BaudRate != 0 {
		fmt.Fprintf(&b, "<Bps>%d</Bps>\n", int(cfg.BaudRate))
	}
	if cfg.Header.IsSet() {
		fmt.Fprintf(&b, "<Header>%s</Header>\n", cfg.Header)
	}
	if cfg.Terminator.IsSet() {
		fmt.Fprintf(&b, "<Terminator>%s</Terminator>\n", cfg.Terminator)
	}
	if cfg.Timeout != 0 {
		fmt.Fprintf(&b, "<Timeout>%d</Timeout>\n", cfg.Timeout.Milliseconds())
	}
	if cfg.ResyncLimit != 0 {
		fmt.Fprintf(&b, "<ResyncLimit>%d</ResyncLimit>\n", cfg.ResyncLimit)
	}
	if cfg.Checksum {
		b.WriteString("<Checksum>1</Checksum>\n")
	}
	if cfg.MaxBuffered != 0 {
		fmt.Fprintf(&b, "<MaxBuffered>%d</MaxBuffered>\n", cfg.MaxBuffered)
	}
	return b.String()
}

// SetSettings applies an XML fragment produced by Settings. Elements that
// are not present keep their current value. Call Restart to make the
// change effective on an open channel.
func (c *SerialChannel) SetSettings(value string) error {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	cfg := c.Config()
	dec := xml.NewDecoder(strings.NewReader("<root>" + value + "</root>"))
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		var v string
		switch se.Name.Local {
		case "root":
			continue
		default:
			if err := dec.DecodeElement(&v, &se); err != nil {
				return err
			}
		}
		v = strings.TrimSpace(v)

		switch se.Name.Local {
		case "Port":
			cfg.Port, err = strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid Port value: %w", err)
			}
		case "Device":
			cfg.Device = v
		case "Bps":
			cfg.BaudRate, err = gxcommon.BaudRateParse(v)
			if err != nil {
				return err
			}
		case "Header":
			cfg.Header, err = ParseMarker(v)
			if err != nil {
				return err
			}
		case "Terminator":
			cfg.Terminator, err = ParseMarker(v)
			if err != nil {
				return err
			}
		case "Timeout":
			ms, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid Timeout value: %w", err)
			}
			cfg.Timeout = time.Duration(ms) * time.Millisecond
		case "ResyncLimit":
			cfg.ResyncLimit, err = strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid ResyncLimit value: %w", err)
			}
		case "MaxBuffered":
			cfg.MaxBuffered, err = strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid MaxBuffered value: %w", err)
			}
		case "Checksum":
			cfg.Checksum = v == "1" || strings.EqualFold(v, "true")
		}
	}
	c.mu.Lock()
	c.cfg = cfg
	c.mu.Unlock()
	return nil
}
