package hostport

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//nolint:errcheck
func init() {
	// --- English (default) ---
	message.SetString(language.AmericanEnglish, "msg.connecting_to", "Connecting to %s at %d bps")
	message.SetString(language.AmericanEnglish, "msg.connected_to", "Connected to %s")
	message.SetString(language.AmericanEnglish, "msg.connect_failed", "Connect to %s failed: %v")
	message.SetString(language.AmericanEnglish, "msg.closing_connection", "Closing connection to %s")
	message.SetString(language.AmericanEnglish, "msg.connection_closed", "Connection closed to %s")
	message.SetString(language.AmericanEnglish, "msg.connection_failed", "Connection to %s failed: %v")
	message.SetString(language.AmericanEnglish, "msg.read_failed", "Reading %d samples failed: %v")
	message.SetString(language.AmericanEnglish, "msg.write_failed", "Writing %d samples failed: %v")
	message.SetString(language.AmericanEnglish, "msg.input_discarded", "Discarded %d received bytes")
	message.SetString(language.AmericanEnglish, "msg.input_overflow", "Receive buffer full, dropped %d oldest bytes")

	// --- German (de) ---
	message.SetString(language.German, "msg.connecting_to", "Verbinde mit %s mit %d bps")
	message.SetString(language.German, "msg.connected_to", "Verbunden mit %s")
	message.SetString(language.German, "msg.connect_failed", "Verbindung zu %s fehlgeschlagen: %v")
	message.SetString(language.German, "msg.closing_connection", "Verbindung zu %s wird geschlossen")
	message.SetString(language.German, "msg.connection_closed", "Verbindung zu %s wurde geschlossen")
	message.SetString(language.German, "msg.connection_failed", "Verbindung zu %s unterbrochen: %v")
	message.SetString(language.German, "msg.read_failed", "Lesen von %d Werten fehlgeschlagen: %v")
	message.SetString(language.German, "msg.write_failed", "Schreiben von %d Werten fehlgeschlagen: %v")
	message.SetString(language.German, "msg.input_discarded", "%d empfangene Bytes verworfen")
	message.SetString(language.German, "msg.input_overflow", "Empfangspuffer voll, %d älteste Bytes verworfen")

	// --- Finnish (fi) ---
	message.SetString(language.Finnish, "msg.connecting_to", "Yhdistetään kohteeseen %s nopeudella %d bps")
	message.SetString(language.Finnish, "msg.connected_to", "Yhdistetty kohteeseen %s")
	message.SetString(language.Finnish, "msg.connect_failed", "Yhteyden muodostus kohteeseen %s epäonnistui: %v")
	message.SetString(language.Finnish, "msg.closing_connection", "Suljetaan yhteys kohteeseen %s")
	message.SetString(language.Finnish, "msg.connection_closed", "Yhteys suljettu kohteeseen %s")
	message.SetString(language.Finnish, "msg.connection_failed", "Yhteys kohteeseen %s katkesi: %v")
	message.SetString(language.Finnish, "msg.read_failed", "%d arvon lukeminen epäonnistui: %v")
	message.SetString(language.Finnish, "msg.write_failed", "%d arvon kirjoittaminen epäonnistui: %v")
	message.SetString(language.Finnish, "msg.input_discarded", "Hylättiin %d vastaanotettua tavua")
	message.SetString(language.Finnish, "msg.input_overflow", "Vastaanottopuskuri täynnä, %d vanhinta tavua hylättiin")

	// --- Swedish (sv) ---
	message.SetString(language.Swedish, "msg.connecting_to", "Ansluter till %s med %d bps")
	message.SetString(language.Swedish, "msg.connected_to", "Ansluten till %s")
	message.SetString(language.Swedish, "msg.connect_failed", "Anslutning till %s misslyckades: %v")
	message.SetString(language.Swedish, "msg.closing_connection", "Stänger anslutning till %s")
	message.SetString(language.Swedish, "msg.connection_closed", "Anslutning stängd till %s")
	message.SetString(language.Swedish, "msg.connection_failed", "Anslutningen till %s bröts: %v")
	message.SetString(language.Swedish, "msg.read_failed", "Läsning av %d värden misslyckades: %v")
	message.SetString(language.Swedish, "msg.write_failed", "Skrivning av %d värden misslyckades: %v")
	message.SetString(language.Swedish, "msg.input_discarded", "Kastade %d mottagna byte")
	message.SetString(language.Swedish, "msg.input_overflow", "Mottagningsbufferten full, kastade %d äldsta byte")

	// --- Spanish (es) ---
	message.SetString(language.Spanish, "msg.connecting_to", "Conectando a %s a %d bps")
	message.SetString(language.Spanish, "msg.connected_to", "Conectado a %s")
	message.SetString(language.Spanish, "msg.connect_failed", "Error al conectar con %s: %v")
	message.SetString(language.Spanish, "msg.closing_connection", "Cerrando conexión con %s")
	message.SetString(language.Spanish, "msg.connection_closed", "Conexión cerrada con %s")
	message.SetString(language.Spanish, "msg.connection_failed", "Conexión con %s interrumpida: %v")
	message.SetString(language.Spanish, "msg.read_failed", "Error al leer %d valores: %v")
	message.SetString(language.Spanish, "msg.write_failed", "Error al escribir %d valores: %v")
	message.SetString(language.Spanish, "msg.input_discarded", "Se descartaron %d bytes recibidos")
	message.SetString(language.Spanish, "msg.input_overflow", "Búfer de recepción lleno, se descartaron %d bytes más antiguos")

	// --- Estonian (et) ---
	message.SetString(language.Estonian, "msg.connecting_to", "Ühendatakse sihtkohta %s kiirusel %d bps")
	message.SetString(language.Estonian, "msg.connected_to", "Ühendatud sihtkohta %s")
	message.SetString(language.Estonian, "msg.connect_failed", "Ühendamine sihtkohta %s ebaõnnestus: %v")
	message.SetString(language.Estonian, "msg.closing_connection", "Suletakse ühendus sihtkohta %s")
	message.SetString(language.Estonian, "msg.connection_closed", "Ühendus suleti sihtkohta %s")
	message.SetString(language.Estonian, "msg.connection_failed", "Ühendus sihtkohta %s katkes: %v")
	message.SetString(language.Estonian, "msg.read_failed", "%d väärtuse lugemine ebaõnnestus: %v")
	message.SetString(language.Estonian, "msg.write_failed", "%d väärtuse kirjutamine ebaõnnestus: %v")
	message.SetString(language.Estonian, "msg.input_discarded", "Loobuti %d vastuvõetud baidist")
	message.SetString(language.Estonian, "msg.input_overflow", "Vastuvõtupuhver täis, loobuti %d vanimast baidist")
}
