package numbering

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormat(t *testing.T) {
	require.Equal(t, "FAT-2026-0001", Format(PrefixInvoice, 2026, 1))
	require.Equal(t, "IRS-2026-0042", Format(PrefixWaybill, 2026, 42))
	require.Equal(t, "TEK-2025-1234", Format(PrefixProposal, 2025, 1234))
	// Sequences past four digits widen instead of wrapping.
	require.Equal(t, "FAT-2026-10001", Format(PrefixInvoice, 2026, 10001))
}
