package enrich

import "github.com/gulbok-dev/gulbok/internal/model"

// CashFlowSource is one component of the petroleum cash flow.
type CashFlowSource struct {
	ID    string `json:"id"`
	Navn  string `json:"navn"`
	Belop int64  `json:"belop"`
}

// FundSnapshot holds the sovereign-fund figures for one budget year.
// Fondsuttak and NettoOverfoeringTilSPU are balancing figures derived from
// the oil-corrected totals; ApplyWithdrawal fills them in.
type FundSnapshot struct {
	OverfoeringTilFond     int64            `json:"overfoering_til_fond"`
	FinansposterTilFond    int64            `json:"finansposter_til_fond"`
	OverfoeringFraFond     int64            `json:"overfoering_fra_fond"`
	NettoOverfoering       int64            `json:"netto_overfoering"`
	Fondsuttak             int64            `json:"fondsuttak"`
	NettoKontantstrom      int64            `json:"netto_kontantstrom"`
	NettoOverfoeringTilSPU int64            `json:"netto_overfoering_til_spu"`
	KontantstromKilder     []CashFlowSource `json:"kontantstrom_kilder"`
}

// BuildFundSnapshot isolates the fund transfer posts and the petroleum
// cash-flow sources.
//
// The residual "other petroleum" source is a subtraction against the
// booked transfer to the fund, not an independently verified total; if the
// named sources ever overshoot it the residual is dropped rather than
// booked negative.
func BuildFundSnapshot(rows []model.Row) FundSnapshot {
	var s FundSnapshot
	var petroleumTaxes, sdfi, equinor int64

	for _, r := range rows {
		if r.ChapterID == chapterToFund {
			switch r.PostID {
			case postTransfer:
				s.OverfoeringTilFond += r.Amount
			case postFinancial:
				s.FinansposterTilFond += r.Amount
			}
		}
		if r.ChapterID == chapterFromFund && r.PostID == postTransfer {
			s.OverfoeringFraFond += r.Amount
		}

		if r.Side != model.SideRevenue {
			continue
		}
		switch {
		case petroleumTaxChapters[r.ChapterID]:
			petroleumTaxes += r.Amount
		case r.ChapterID == chapterSDFI:
			sdfi += r.Amount
		case r.ChapterID == chapterEquinorDividend:
			equinor += r.Amount
		}
	}

	s.NettoOverfoering = s.OverfoeringTilFond + s.FinansposterTilFond - s.OverfoeringFraFond

	s.KontantstromKilder = []CashFlowSource{
		{ID: "petskatt", Navn: "Petroleumsskatter", Belop: petroleumTaxes},
		{ID: "sdfi", Navn: "SDFI", Belop: sdfi},
	}
	if equinor > 0 {
		s.KontantstromKilder = append(s.KontantstromKilder,
			CashFlowSource{ID: "equinor", Navn: "Equinor-utbytte", Belop: equinor})
	}
	for _, src := range s.KontantstromKilder {
		s.NettoKontantstrom += src.Belop
	}

	// Residual: booked transfer to the fund minus the sources already
	// listed. Only ever booked when positive; the sources list is
	// variable-length.
	residual := s.OverfoeringTilFond + s.FinansposterTilFond - s.NettoKontantstrom
	if residual > 0 {
		s.KontantstromKilder = append(s.KontantstromKilder,
			CashFlowSource{ID: "andre_petro", Navn: "Andre petroleumsinnt.", Belop: residual})
		s.NettoKontantstrom += residual
	}

	return s
}

// ApplyWithdrawal records the fund withdrawal (the oil-corrected deficit)
// on the snapshot and derives the net transfer to the fund from it.
func ApplyWithdrawal(s *FundSnapshot, withdrawal int64) {
	s.Fondsuttak = withdrawal
	s.NettoOverfoeringTilSPU = s.NettoKontantstrom - withdrawal
}
