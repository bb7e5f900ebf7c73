package webinar

// Notice is a bilingual member-facing message. ClearAfterSeconds tells the
// client how long to display it before auto-clearing; zero means sticky.
type Notice struct {
	EN                string `json:"en"`
	AF                string `json:"af"`
	ClearAfterSeconds int    `json:"clear_after_seconds,omitempty"`
}

const expiredNoticeSeconds = 5

func expiredNotice() *Notice {
	return &Notice{
		EN:                "The viewing period for this webinar has ended. Please contact our support team to arrange access.",
		AF:                "Die kykperiode vir hierdie webinar het verstryk. Kontak asseblief ons ondersteuningspan om toegang te reël.",
		ClearAfterSeconds: expiredNoticeSeconds,
	}
}

func playbackErrorNotice() *Notice {
	return &Notice{
		EN: "The video could not be played. Switching to an alternative stream.",
		AF: "Die video kon nie gespeel word nie. Ons skakel oor na 'n alternatiewe stroom.",
	}
}

func noMediaNotice() *Notice {
	return &Notice{
		EN: "No recording is available for this webinar yet. Please check back later.",
		AF: "Daar is nog geen opname vir hierdie webinar beskikbaar nie. Probeer asseblief later weer.",
	}
}
