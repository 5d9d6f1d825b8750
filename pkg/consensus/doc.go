// Package consensus scores synthesized policy rules against their source
// principles using several independent validators and combines their opinions
// into a single pass/fail verdict, so governance never relies on a single
// model's judgment.
//
// The combination rule is deliberately conservative: the weighted average of
// all validator scores is multiplied by the minimum score before comparison
// with the threshold. A single validator scoring near zero collapses the
// consensus signal regardless of how well the others scored, trading false
// rejections for false approvals. Callers who find this veto too punishing
// should raise it with policy owners rather than soften the rule locally.
package consensus
