package usecase

import (
	"regexp"
	"strings"

	ingestiondomain "crmhub-backend/internal/ingestion/domain"
)

// nonLeadLocalRe matches sender local-parts that only ever belong to
// automated mail. Kept deliberately narrow: a false positive here drops
// a real lead with no review step.
var nonLeadLocalRe = regexp.MustCompile(`^(no-?reply|do-?not-?reply|donotreply|bounce|bounces|notification|notifications|mailer-daemon|postmaster|alert|alerts)([+._-].*)?$`)

// HeuristicFilter is the cheap, deterministic pre-classifier that runs
// before any paid model call.
type HeuristicFilter struct {
	blockedDomains map[string]struct{}
}

func NewHeuristicFilter(blockedDomains []string) *HeuristicFilter {
	blocked := make(map[string]struct{}, len(blockedDomains))
	for _, d := range blockedDomains {
		d = strings.ToLower(strings.TrimSpace(d))
		if d != "" {
			blocked[d] = struct{}{}
		}
	}
	return &HeuristicFilter{blockedDomains: blocked}
}

// IsObviouslyNotALead rejects automated senders on header evidence
// alone: a no-reply/bounce/notification local-part, a List-Unsubscribe
// header, bulk/list precedence, or a blocked sender domain.
func (f *HeuristicFilter) IsObviouslyNotALead(senderEmail string, msg *ingestiondomain.NormalizedMessage) bool {
	email := strings.ToLower(strings.TrimSpace(senderEmail))
	local, domain := splitAddress(email)

	if nonLeadLocalRe.MatchString(local) {
		return true
	}
	if msg.Header("List-Unsubscribe") != "" {
		return true
	}
	precedence := strings.ToLower(strings.TrimSpace(msg.Header("Precedence")))
	if precedence == "bulk" || precedence == "list" {
		return true
	}
	if _, blocked := f.blockedDomains[domain]; blocked {
		return true
	}
	return false
}

func splitAddress(email string) (local, domain string) {
	idx := strings.LastIndex(email, "@")
	if idx < 0 {
		return email, ""
	}
	return email[:idx], email[idx+1:]
}
