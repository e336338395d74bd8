package detector

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReasonStringCoversEveryValue(t *testing.T) {
	cases := map[Reason]string{
		ReasonUnknown:                          "UNKNOWN",
		ReasonCastWhenReturn:                   "CAST_WHEN_RETURN",
		ReasonCastThisPointer:                  "CAST_THIS_POINTER",
		ReasonCastParameter:                    "CAST_PARAMETER",
		ReasonUsedAsClassObject:                "USED_AS_CLASS_OBJECT",
		ReasonCastCheckCast:                    "CAST_CHECK_CAST",
		ReasonCastISPutObject:                  "CAST_ISPUT_OBJECT",
		ReasonCastAPutObject:                   "CAST_APUT_OBJECT",
		ReasonMultiEnumTypes:                   "MULTI_ENUM_TYPES",
		ReasonUnsafeInvocationOnCandidateEnum:  "UNSAFE_INVOCATION_ON_CANDIDATE_ENUM",
	}
	for reason, want := range cases {
		require.Equal(t, want, reason.String())
	}
}

func TestReasonStringUnknownValueFallsBack(t *testing.T) {
	require.Equal(t, "UNKNOWN", Reason(999).String())
}
