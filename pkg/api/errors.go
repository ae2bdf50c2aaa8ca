package api

// ReasonHeader is the error metadata key carrying the engine's error reason,
// for example "insufficient_funds" or "round_not_open".
const ReasonHeader = "Error-Reason"
