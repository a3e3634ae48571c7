package bot

import (
	"math/rand"
	"sync"

	"github.com/Dosada05/game-arena/games"
)

// Level selects between uniform random play and the per-game heuristics.
type Level string

const (
	LevelBasic    Level = "basic"
	LevelAdvanced Level = "advanced"
)

func ParseLevel(s string) (Level, bool) {
	switch Level(s) {
	case LevelBasic:
		return LevelBasic, true
	case LevelAdvanced:
		return LevelAdvanced, true
	}
	return "", false
}

// Policy produces moves for computer players. It never mutates the
// states it is given; safe for concurrent use.
type Policy struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func New(seed int64) *Policy {
	return &Policy{rng: rand.New(rand.NewSource(seed))}
}

// ChooseMove picks a move for the role in the given state, or reports
// false when no legal move exists.
func (p *Policy) ChooseMove(gameID string, s games.State, role games.Role, level Level) (games.Move, bool) {
	engine, ok := games.ByID(gameID)
	if !ok || engine.Terminal(s) {
		return nil, false
	}
	if level == LevelAdvanced {
		if mv, ok := p.chooseAdvanced(engine, s, role); ok {
			return mv, true
		}
	}
	return p.chooseBasic(engine, s, role)
}

func (p *Policy) chooseBasic(engine games.Engine, s games.State, role games.Role) (games.Move, bool) {
	moves := engine.Enumerate(s, role)
	if len(moves) == 0 {
		return nil, false
	}
	p.mu.Lock()
	idx := p.rng.Intn(len(moves))
	p.mu.Unlock()
	return moves[idx], true
}

func (p *Policy) chooseAdvanced(engine games.Engine, s games.State, role games.Role) (games.Move, bool) {
	switch engine.ID() {
	case games.GatosCaesID:
		return mobilityBest(engine, s, role, 10, 8)
	case games.DominorioID:
		return dominorioMinimax(engine, s, role)
	case games.QuelhasID:
		return mobilityBest(engine, s, role, 1, 3)
	case games.ProdutoID:
		return p.produtoSampled(engine, s, role)
	case games.AtariGoID:
		return atariGoHeuristic(engine, s, role)
	case games.NexID:
		return nexCenterPlace(s, role)
	}
	return nil, false
}

// mobilityBest maximizes myWeight*|myMoves| - oppWeight*|oppMoves| over
// the positions reachable in one move. Ties go to the first candidate.
func mobilityBest(engine games.Engine, s games.State, role games.Role, myWeight, oppWeight int) (games.Move, bool) {
	moves := engine.Enumerate(s, role)
	if len(moves) == 0 {
		return nil, false
	}
	var best games.Move
	bestScore := 0
	for i, mv := range moves {
		next, err := engine.Apply(s, mv, role)
		if err != nil {
			continue
		}
		score := myWeight*len(engine.Enumerate(next, role)) - oppWeight*len(engine.Enumerate(next, role.Other()))
		if i == 0 || score > bestScore {
			best, bestScore = mv, score
		}
	}
	return best, best != nil
}

const dominorioWinScore = 1 << 20

func dominorioLeaf(engine games.Engine, s games.State, me games.Role) int {
	return 5*len(engine.Enumerate(s, me)) - 4*len(engine.Enumerate(s, me.Other()))
}

// dominorioMinimax searches two plies with alpha-beta pruning.
func dominorioMinimax(engine games.Engine, s games.State, me games.Role) (games.Move, bool) {
	moves := engine.Enumerate(s, me)
	if len(moves) == 0 {
		return nil, false
	}
	opp := me.Other()
	var best games.Move
	alpha := -dominorioWinScore * 2
	for _, mv := range moves {
		s1, err := engine.Apply(s, mv, me)
		if err != nil {
			continue
		}
		var value int
		if engine.Terminal(s1) {
			if engine.Winner(s1) == games.RoleOutcome(me) {
				value = dominorioWinScore
			} else {
				value = -dominorioWinScore
			}
		} else {
			value = dominorioWinScore * 2
			for _, reply := range engine.Enumerate(s1, opp) {
				s2, err := engine.Apply(s1, reply, opp)
				if err != nil {
					continue
				}
				leaf := dominorioLeaf(engine, s2, me)
				if engine.Terminal(s2) {
					if engine.Winner(s2) == games.RoleOutcome(me) {
						leaf = dominorioWinScore
					} else {
						leaf = -dominorioWinScore
					}
				}
				if leaf < value {
					value = leaf
				}
				if value <= alpha {
					break
				}
			}
		}
		if best == nil || value > alpha {
			best, alpha = mv, value
		}
	}
	return best, best != nil
}

const produtoSampleLimit = 100

func (p *Policy) produtoSampled(engine games.Engine, s games.State, role games.Role) (games.Move, bool) {
	moves := engine.Enumerate(s, role)
	if len(moves) == 0 {
		return nil, false
	}
	if len(moves) > produtoSampleLimit {
		p.mu.Lock()
		p.rng.Shuffle(len(moves), func(i, j int) { moves[i], moves[j] = moves[j], moves[i] })
		p.mu.Unlock()
		moves = moves[:produtoSampleLimit]
	}
	myColor, oppColor := games.ProdutoBlack, games.ProdutoWhite
	if role == games.RoleP2 {
		myColor, oppColor = oppColor, myColor
	}
	var best games.Move
	bestScore := 0.0
	for i, mv := range moves {
		next, err := engine.Apply(s, mv, role)
		if err != nil {
			continue
		}
		score := float64(games.ProdutoScore(next, myColor)) - 0.9*float64(games.ProdutoScore(next, oppColor))
		if i == 0 || score > bestScore {
			best, bestScore = mv, score
		}
	}
	return best, best != nil
}

func atariGoHeuristic(engine games.Engine, s games.State, role games.Role) (games.Move, bool) {
	moves := engine.Enumerate(s, role)
	var best games.Move
	bestScore := 0
	for _, mv := range moves {
		m := mv.(games.AtariGoMove)
		if m.Pass {
			continue
		}
		next, err := engine.Apply(s, mv, role)
		if err != nil {
			continue
		}
		if engine.Winner(next) == games.RoleOutcome(role) {
			return mv, true
		}
		dist := abs(m.Row-4) + abs(m.Col-4)
		score := 100*games.AtariGoAtariGroups(next, role.Other()) -
			80*games.AtariGoAtariGroups(next, role) - 2*dist
		if best == nil || score > bestScore {
			best, bestScore = mv, score
		}
	}
	if best == nil {
		if len(moves) == 0 {
			return nil, false
		}
		return moves[len(moves)-1], true // pass
	}
	return best, true
}

// nexCenterPlace prefers placing toward the center line that runs along
// the mover's connection direction: black (top to bottom) narrows
// |col-5|, white (left to right) |row-5|.
// The paired neutral goes to the farthest-out empty cell.
func nexCenterPlace(s games.State, role games.Role) (games.Move, bool) {
	engine, _ := games.ByID(games.NexID)
	moves := engine.Enumerate(s, role)
	if len(moves) == 0 {
		return nil, false
	}
	wantsColumns := games.NexPlaysBlack(s, role)
	var best games.Move
	bestBias, bestNeutralBias := 0, 0
	for _, mv := range moves {
		m, ok := mv.(games.NexMove)
		if !ok || m.Type != games.NexPlace {
			continue
		}
		var bias, neutralBias int
		if wantsColumns {
			bias = abs(m.OwnPiece.Col - 5)
			neutralBias = abs(m.NeutralPiece.Col - 5)
		} else {
			bias = abs(m.OwnPiece.Row - 5)
			neutralBias = abs(m.NeutralPiece.Row - 5)
		}
		if best == nil || bias < bestBias || (bias == bestBias && neutralBias > bestNeutralBias) {
			best, bestBias, bestNeutralBias = mv, bias, neutralBias
		}
	}
	if best == nil {
		return moves[0], true
	}
	return best, true
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
