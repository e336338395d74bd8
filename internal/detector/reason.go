package detector

// Reason is a diagnostic tag explaining why a type was rejected. Per spec
// §4.5, reasons are not externally surfaced by the public API but are kept
// for logging: the detector logs a rejection's reason at Debug level, which
// is invaluable when explaining to a shrinker's user why an enum that
// "looks safe" didn't get optimized.
type Reason int

const (
	ReasonUnknown Reason = iota
	ReasonCastWhenReturn
	ReasonCastThisPointer
	ReasonCastParameter
	ReasonUsedAsClassObject
	ReasonCastCheckCast
	ReasonCastISPutObject
	ReasonCastAPutObject
	ReasonMultiEnumTypes
	ReasonUnsafeInvocationOnCandidateEnum
)

func (r Reason) String() string {
	switch r {
	case ReasonCastWhenReturn:
		return "CAST_WHEN_RETURN"
	case ReasonCastThisPointer:
		return "CAST_THIS_POINTER"
	case ReasonCastParameter:
		return "CAST_PARAMETER"
	case ReasonUsedAsClassObject:
		return "USED_AS_CLASS_OBJECT"
	case ReasonCastCheckCast:
		return "CAST_CHECK_CAST"
	case ReasonCastISPutObject:
		return "CAST_ISPUT_OBJECT"
	case ReasonCastAPutObject:
		return "CAST_APUT_OBJECT"
	case ReasonMultiEnumTypes:
		return "MULTI_ENUM_TYPES"
	case ReasonUnsafeInvocationOnCandidateEnum:
		return "UNSAFE_INVOCATION_ON_CANDIDATE_ENUM"
	default:
		return "UNKNOWN"
	}
}
