// Package instructions prints the DNS and allow-list steps an operator has
// to perform after provisioning or migration.
package instructions

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

var (
	colorGreen  = lipgloss.Color("#22c55e")
	colorYellow = lipgloss.Color("#eab308")
	colorBlue   = lipgloss.Color("#3b82f6")
	colorDim    = lipgloss.Color("#6b7280")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorBlue)

	valueStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorGreen)

	noteStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	warningStyle = lipgloss.NewStyle().
			Foreground(colorYellow)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBlue).
			Padding(0, 1)
)

// DNSRecord is one record the operator must create or change.
type DNSRecord struct {
	Type  string
	Name  string
	Value string
}

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Printer renders instructions, styled when writing to a terminal.
type Printer struct {
	w      io.Writer
	styled bool
}

// New returns a Printer that styles its output when w is a terminal.
func New(w io.Writer) *Printer {
	return &Printer{w: w, styled: IsTerminal(w)}
}

// NewPlain returns a Printer that never styles its output.
func NewPlain(w io.Writer) *Printer {
	return &Printer{w: w}
}

// DNS prints the A record pointing domain at the load balancer IP.
func (p *Printer) DNS(domain, ip string) {
	p.section("DNS configuration required",
		[]string{"Point your domain at the load balancer:"},
		[]DNSRecord{{Type: "A", Name: domain, Value: ip}},
		"The managed SSL certificate is issued once DNS resolves to this IP. This can take 15-60 minutes.",
	)
}

// OutboundIP prints the allow-list step for the static outbound IP.
func (p *Printer) OutboundIP(ip string) {
	p.section("Static outbound IP",
		[]string{
			"All outbound traffic of the service now leaves from " + p.value(ip) + ".",
			"Add it to your database firewall allow-list.",
		},
		nil,
		"",
	)
}

// MigrationDNS prints the DNS change that moves domain from the legacy
// domain mapping target to the load balancer IP.
func (p *Printer) MigrationDNS(domain, oldTarget, ip string) {
	lines := []string{"Update DNS to finish the migration to the load balancer:"}
	if oldTarget != "" {
		lines = append(lines, fmt.Sprintf("Remove the record for %s pointing at %s.", domain, oldTarget))
	}
	p.section("DNS change required",
		lines,
		[]DNSRecord{{Type: "A", Name: domain, Value: ip}},
		"Traffic keeps flowing through the old records until DNS propagates.",
	)
}

func (p *Printer) section(title string, lines []string, records []DNSRecord, note string) {
	var b strings.Builder
	b.WriteString(p.style(titleStyle, title))
	b.WriteString("\n\n")
	for _, line := range lines {
		b.WriteString(line)
		b.WriteString("\n")
	}
	if len(records) > 0 {
		b.WriteString("\n")
		b.WriteString(p.records(records))
	}
	if note != "" {
		b.WriteString("\n")
		b.WriteString(p.style(noteStyle, note))
		b.WriteString("\n")
	}

	out := b.String()
	if p.styled {
		out = boxStyle.Render(strings.TrimRight(out, "\n")) + "\n"
	}
	fmt.Fprintln(p.w)
	fmt.Fprint(p.w, out)
}

func (p *Printer) records(records []DNSRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "  %-6s %-30s %s\n", "Type", "Name", "Value")
	for _, r := range records {
		fmt.Fprintf(&b, "  %-6s %-30s %s\n", r.Type, r.Name, p.value(r.Value))
	}
	return b.String()
}

func (p *Printer) value(s string) string {
	return p.style(valueStyle, s)
}

func (p *Printer) style(s lipgloss.Style, text string) string {
	if !p.styled {
		return text
	}
	return s.Render(text)
}

// Warn prints a highlighted warning line.
func (p *Printer) Warn(format string, args ...any) {
	fmt.Fprintln(p.w, p.style(warningStyle, fmt.Sprintf(format, args...)))
}

// PrintDNS prints DNS instructions to w.
func PrintDNS(w io.Writer, domain, ip string) { New(w).DNS(domain, ip) }

// PrintOutboundIP prints outbound IP instructions to w.
func PrintOutboundIP(w io.Writer, ip string) { New(w).OutboundIP(ip) }

// PrintMigrationDNS prints migration DNS instructions to w.
func PrintMigrationDNS(w io.Writer, domain, oldTarget, ip string) {
	New(w).MigrationDNS(domain, oldTarget, ip)
}
