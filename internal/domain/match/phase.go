package match

type Phase string

const (
	PhaseNotStarted      Phase = "NOT_STARTED"
	PhaseFirstHalf       Phase = "FIRST_HALF"
	PhaseHalfTime        Phase = "HALF_TIME"
	PhaseSecondHalf      Phase = "SECOND_HALF"
	PhaseExtraTime       Phase = "EXTRA_TIME"
	PhasePenaltyShootout Phase = "PENALTY_SHOOTOUT"
	PhaseFullTime        Phase = "FULL_TIME"
	PhaseAfterExtraTime  Phase = "AFTER_EXTRA_TIME"
	PhaseAfterPenalties  Phase = "AFTER_PENALTIES"
	PhasePostponed       Phase = "POSTPONED"
	PhaseCancelled       Phase = "CANCELLED"
	PhaseAbandoned       Phase = "ABANDONED"
	PhaseAwarded         Phase = "AWARDED"
	PhaseWalkover        Phase = "WALKOVER"
	PhaseUnknown         Phase = "UNKNOWN"
)

var phaseByStatus = map[Status]Phase{
	StatusNotStarted:     PhaseNotStarted,
	StatusFirstHalf:      PhaseFirstHalf,
	StatusHalfTime:       PhaseHalfTime,
	StatusSecondHalf:     PhaseSecondHalf,
	StatusExtraTime:      PhaseExtraTime,
	StatusPenalties:      PhasePenaltyShootout,
	StatusFullTime:       PhaseFullTime,
	StatusAfterExtraTime: PhaseAfterExtraTime,
	StatusAfterPenalties: PhaseAfterPenalties,
	StatusPostponed:      PhasePostponed,
	StatusCancelled:      PhaseCancelled,
	StatusAbandoned:      PhaseAbandoned,
	StatusAwarded:        PhaseAwarded,
	StatusWalkover:       PhaseWalkover,
}

// DerivePhase maps a provider status code and elapsed minute to a display phase.
// A generic LIVE status is resolved by the elapsed minute.
func DerivePhase(status Status, elapsed *int) Phase {
	if status == StatusLive {
		if elapsed != nil && *elapsed > 45 {
			return PhaseSecondHalf
		}
		return PhaseFirstHalf
	}
	if phase, ok := phaseByStatus[status]; ok {
		return phase
	}
	return PhaseUnknown
}
