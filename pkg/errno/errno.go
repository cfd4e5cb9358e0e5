package errno

// Errno defines the error code logic
type Errno struct {
	Code    int
	Message string
}

func (e Errno) Error() string {
	return e.Message
}

// Decode tries to convert an error to Errno
func Decode(err error) (int, string) {
	if err == nil {
		return OK.Code, OK.Message
	}

	switch typed := err.(type) {
	case *Errno:
		return typed.Code, typed.Message
	case Errno:
		return typed.Code, typed.Message
	default:
		return InternalServerError.Code, err.Error()
	}
}

// Common Errors
var (
	OK                  = Errno{Code: 0, Message: "Success"}
	InternalServerError = Errno{Code: 10001, Message: "Internal server error"}
	ErrBind             = Errno{Code: 10002, Message: "Error occurred while binding the request body to the struct"}
	ErrDatabase         = Errno{Code: 10004, Message: "Database error"}
)

// Business Errors (20000+)
var (
	ErrUserNotFound    = Errno{Code: 20101, Message: "User not found"}
	ErrPackageNotFound = Errno{Code: 20102, Message: "Staking package not found"}

	// 质押生命周期 Staking lifecycle
	ErrStakePending       = Errno{Code: 20201, Message: "A pending stake is awaiting confirmation, confirm or cancel it first"}
	ErrNoPendingStake     = Errno{Code: 20202, Message: "No pending stake found for this user"}
	ErrIntentExpired      = Errno{Code: 20203, Message: "Pending stake expired, funds may have moved without a matching record"}
	ErrConfirmationFailed = Errno{Code: 20204, Message: "Backend confirmation failed, the pending stake was kept for retry"}

	// 钱包 Wallet
	ErrWalletUnavailable   = Errno{Code: 20301, Message: "No wallet available"}
	ErrWrongWallet         = Errno{Code: 20302, Message: "Connected wallet does not match the registered address"}
	ErrWrongChain          = Errno{Code: 20303, Message: "Wallet is on the wrong chain"}
	ErrChainSwitchRejected = Errno{Code: 20304, Message: "Chain switch was rejected"}
	ErrUserRejected        = Errno{Code: 20305, Message: "Transfer was rejected in the wallet"}
	ErrInsufficientFunds   = Errno{Code: 20306, Message: "Insufficient funds for transfer"}
	ErrTransferFailed      = Errno{Code: 20307, Message: "Token transfer failed"}

	// 推荐网络 Referral network
	ErrMalformedReferralGraph = Errno{Code: 20401, Message: "Referral relationship graph contains a cycle or dangling reference"}
)
