// Package api defines the RPC surface of the splitledger server: the
// request and response messages, the fully qualified procedure names, and
// handler and client constructors for each service.
//
// Messages are plain Go structs carried by the JSON codec registered under
// the "json" name, so any Connect client speaking application/json can call
// the server. Decimal amounts are encoded as JSON strings.
package api

const (
	AuthServiceName   = "splitledger.v1.AuthService"
	FriendServiceName = "splitledger.v1.FriendService"
	GroupServiceName  = "splitledger.v1.GroupService"
	LedgerServiceName = "splitledger.v1.LedgerService"
)

const (
	AuthRegisterProcedure       = "/" + AuthServiceName + "/Register"
	AuthLoginProcedure          = "/" + AuthServiceName + "/Login"
	AuthGetCurrentUserProcedure = "/" + AuthServiceName + "/GetCurrentUser"

	FriendAddFriendProcedure    = "/" + FriendServiceName + "/AddFriend"
	FriendListFriendsProcedure  = "/" + FriendServiceName + "/ListFriends"
	FriendDeleteFriendProcedure = "/" + FriendServiceName + "/DeleteFriend"

	GroupCreateGroupProcedure      = "/" + GroupServiceName + "/CreateGroup"
	GroupGetGroupProcedure         = "/" + GroupServiceName + "/GetGroup"
	GroupListGroupsProcedure       = "/" + GroupServiceName + "/ListGroups"
	GroupUpdateGroupProcedure      = "/" + GroupServiceName + "/UpdateGroup"
	GroupDeleteGroupProcedure      = "/" + GroupServiceName + "/DeleteGroup"
	GroupGetGroupBalancesProcedure = "/" + GroupServiceName + "/GetGroupBalances"

	LedgerPreviewSplitProcedure   = "/" + LedgerServiceName + "/PreviewSplit"
	LedgerCreateExpenseProcedure  = "/" + LedgerServiceName + "/CreateExpense"
	LedgerUpdateExpenseProcedure  = "/" + LedgerServiceName + "/UpdateExpense"
	LedgerDeleteExpenseProcedure  = "/" + LedgerServiceName + "/DeleteExpense"
	LedgerRecordPaymentProcedure  = "/" + LedgerServiceName + "/RecordPayment"
	LedgerListRecordsProcedure    = "/" + LedgerServiceName + "/ListRecords"
	LedgerGetBalancesProcedure    = "/" + LedgerServiceName + "/GetBalances"
	LedgerGetSpendingProcedure    = "/" + LedgerServiceName + "/GetSpending"
	LedgerConvertToExactProcedure = "/" + LedgerServiceName + "/ConvertToExact"
)

// PublicProcedures can be called without a session token.
var PublicProcedures = []string{
	AuthRegisterProcedure,
	AuthLoginProcedure,
}

// Error metadata keys attached to invalid_argument errors caused by a
// rejected split, so clients can show both numbers.
const (
	MetaSplitReason   = "Split-Reason"
	MetaSplitExpected = "Split-Expected"
	MetaSplitActual   = "Split-Actual"
)
