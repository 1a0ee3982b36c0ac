// Package gate はクライアント側の認証ゲートを提供する。
// セッションフラグとトークンの有無から認証状態を決め、画面ごとに表示可否を判定する。
// 署名の検証は行わない。
package gate

const (
	// SignInPath は未認証時の遷移先（サインイン画面）。
	SignInPath = "/"
	// SignUpPath はサインアップ画面のパス。
	SignUpPath = "/signup"
	// LandingPath は認証済み時の遷移先。
	LandingPath = "/landing"
)

// State はクライアントから見た認証状態。
type State int

const (
	// Unknown はトークンのみを保持し、現在のプロセスでサインインが完了していない状態。
	Unknown State = iota
	// Authenticated は現在のプロセスでサインインが完了した状態。
	Authenticated
	// Unauthenticated はフラグもトークンも無い状態。
	Unauthenticated
)

func (s State) String() string {
	switch s {
	case Authenticated:
		return "authenticated"
	case Unauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

// Signals はゲートへの入力。
type Signals struct {
	SessionFlag  bool
	TokenPresent bool
}

// View はゲートで保護される画面。
type View struct {
	Path        string
	RequireAuth bool
}

// 既知の画面
var (
	SignInView  = View{Path: SignInPath, RequireAuth: false}
	SignUpView  = View{Path: SignUpPath, RequireAuth: false}
	LandingView = View{Path: LandingPath, RequireAuth: true}
)

var views = map[string]View{
	SignInView.Path:  SignInView,
	SignUpView.Path:  SignUpView,
	LandingView.Path: LandingView,
}

// ViewFor はパスに対応する既知の画面を返す。
func ViewFor(path string) (View, bool) {
	v, ok := views[path]
	return v, ok
}

// Action はゲートの判定結果の種類。
type Action int

const (
	Allow Action = iota
	RedirectSignIn
	RedirectLanding
)

func (a Action) String() string {
	switch a {
	case RedirectSignIn:
		return "redirect_signin"
	case RedirectLanding:
		return "redirect_landing"
	default:
		return "allow"
	}
}

// Decision はゲートの判定結果。リダイレクト時はLocationに遷移先が入る。
type Decision struct {
	Action   Action
	Location string
	State    State
}

// Redirect はリダイレクトが必要かどうかを返す。
func (d Decision) Redirect() bool {
	return d.Action != Allow
}

// StateOf はシグナルから認証状態を求める。フラグがトークンより優先する。
func StateOf(sig Signals) State {
	switch {
	case sig.SessionFlag:
		return Authenticated
	case sig.TokenPresent:
		return Unknown
	default:
		return Unauthenticated
	}
}

// Evaluate は画面とシグナルから判定を返す。
// Unknownは保護画面では通過、公開画面ではランディングへのリダイレクトになる。
func Evaluate(view View, sig Signals) Decision {
	state := StateOf(sig)

	if view.RequireAuth {
		if state == Unauthenticated {
			return Decision{Action: RedirectSignIn, Location: SignInPath, State: state}
		}
		return Decision{Action: Allow, State: state}
	}

	if state == Authenticated || state == Unknown {
		return Decision{Action: RedirectLanding, Location: LandingPath, State: state}
	}
	return Decision{Action: Allow, State: state}
}

// SignalSource はゲートにシグナルを提供する。client.Sessionが実装する。
type SignalSource interface {
	Signals() Signals
}

// Guard は画面遷移のたびにSignalSourceを読み直して判定する。
type Guard struct {
	source SignalSource
}

// NewGuard はGuardを生成する。
func NewGuard(source SignalSource) *Guard {
	return &Guard{source: source}
}

// Check は画面に対する判定を返す。
func (g *Guard) Check(view View) Decision {
	return Evaluate(view, g.source.Signals())
}

// CheckPath はパスに対する判定を返す。未知のパスは保護画面として扱う。
func (g *Guard) CheckPath(path string) Decision {
	view, ok := ViewFor(path)
	if !ok {
		view = View{Path: path, RequireAuth: true}
	}
	return g.Check(view)
}
