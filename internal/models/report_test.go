package models

import "testing"

func TestValidReportTransition(t *testing.T) {
	cases := []struct {
		from, to ReportStatus
		want     bool
	}{
		{ReportStatusPending, ReportStatusReviewed, true},
		{ReportStatusPending, ReportStatusResolved, true},
		{ReportStatusPending, ReportStatusDismissed, true},
		{ReportStatusReviewed, ReportStatusResolved, true},
		{ReportStatusReviewed, ReportStatusDismissed, true},
		{ReportStatusReviewed, ReportStatusPending, false},
		{ReportStatusResolved, ReportStatusDismissed, false},
		{ReportStatusDismissed, ReportStatusPending, false},
		{ReportStatusResolved, ReportStatusResolved, true},
	}

	for _, tc := range cases {
		if got := ValidReportTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("ValidReportTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}
