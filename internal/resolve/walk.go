package resolve

import (
	"fmt"

	"ember/internal/ast"
	"ember/internal/diag"
)

func (fr *funcResolver) resolveBlock(b *ast.Block) {
	if b == nil {
		return
	}
	for _, s := range b.Stmts {
		fr.resolveStmt(s)
	}
}

func (fr *funcResolver) resolveStmt(s *ast.Stmt) {
	if s == nil {
		return
	}
	switch s.Kind {
	case ast.StmtExpr, ast.StmtThrow, ast.StmtYield:
		fr.resolveExpr(s.Expr)

	case ast.StmtLet:
		if s.Let.Value != nil {
			fr.resolveExpr(s.Let.Value)
		}
		s.Let.Slot = fr.declare(s.Let.Name, s.Let.Type, s.Let.IsMut)

	case ast.StmtIf:
		fr.resolveExpr(s.If.Cond)
		fr.pushScope()
		fr.resolveBlock(s.If.Then)
		fr.popScope()
		if s.If.Else != nil {
			fr.pushScope()
			fr.resolveBlock(s.If.Else)
			fr.popScope()
		}

	case ast.StmtWhile:
		fr.resolveExpr(s.While.Cond)
		fr.pushScope()
		fr.resolveBlock(s.While.Body)
		fr.popScope()

	case ast.StmtFor:
		fr.resolveExpr(s.For.Iterable)
		fr.pushScope()
		s.For.VarSlot = fr.declare(s.For.VarName, s.For.VarType, false)
		fr.resolveBlock(s.For.Body)
		fr.popScope()

	case ast.StmtReturn:
		if s.Return.HasValue {
			fr.resolveExpr(s.Return.Value)
		}

	case ast.StmtBreak, ast.StmtContinue:
		// no operands to resolve

	case ast.StmtTry:
		fr.pushScope()
		fr.resolveBlock(s.Try.Body)
		fr.popScope()
		for i := range s.Try.Catches {
			fr.pushScope()
			s.Try.Catches[i].VarSlot = fr.declare(s.Try.Catches[i].VarName, s.Try.Catches[i].ClassType, false)
			fr.resolveBlock(s.Try.Catches[i].Body)
			fr.popScope()
		}
		if s.Try.Finally != nil {
			fr.pushScope()
			fr.resolveBlock(s.Try.Finally)
			fr.popScope()
		}

	case ast.StmtUsing:
		fr.resolveExpr(s.Using.Init)
		fr.pushScope()
		s.Using.VarSlot = fr.declare(s.Using.VarName, s.Using.VarType, false)
		fr.resolveBlock(s.Using.Body)
		fr.popScope()

	case ast.StmtBlock:
		fr.pushScope()
		fr.resolveBlock(s.Block)
		fr.popScope()
	}
}

func (fr *funcResolver) resolveExpr(e *ast.Expr) {
	if e == nil {
		return
	}
	switch e.Kind {
	case ast.ExprIntLit, ast.ExprFloatLit, ast.ExprBoolLit, ast.ExprNilLit:
		// leaf literals, nothing to resolve

	case ast.ExprStringLit:
		for i := range e.Interp {
			if e.Interp[i].Expr != nil {
				fr.resolveExpr(e.Interp[i].Expr)
			}
		}

	case ast.ExprIdent:
		slot, _, ok := fr.lookup(e.Ident.Name)
		if !ok {
			fr.r.fatal(diag.ContractUnresolvedIdent, e.Span,
				fmt.Sprintf("unresolved identifier %q", e.Ident.Name))
			return
		}
		e.Ident.Slot = slot

	case ast.ExprThis:
		e.Ident.Slot = fr.thisSlot

	case ast.ExprBinOp:
		fr.resolveExpr(e.Lhs)
		fr.resolveExpr(e.Rhs)

	case ast.ExprUnOp:
		fr.resolveExpr(e.Lhs)

	case ast.ExprAssign:
		fr.resolveExpr(e.Assign.Target)
		fr.resolveExpr(e.Assign.Value)

	case ast.ExprCall:
		if e.Call.Receiver != nil {
			fr.resolveExpr(e.Call.Receiver)
		}
		for _, a := range e.Call.Args {
			fr.resolveExpr(a)
		}

	case ast.ExprNew:
		for _, a := range e.New.Args {
			fr.resolveExpr(a)
		}

	case ast.ExprFieldGet:
		fr.resolveExpr(e.FieldGet.Recv)

	case ast.ExprFieldSet:
		fr.resolveExpr(e.FieldSet.Recv)
		fr.resolveExpr(e.FieldSet.Value)

	case ast.ExprIndexGet:
		fr.resolveExpr(e.IndexGet.Recv)
		fr.resolveExpr(e.IndexGet.Index)

	case ast.ExprIndexSet:
		fr.resolveExpr(e.IndexSet.Recv)
		fr.resolveExpr(e.IndexSet.Index)
		fr.resolveExpr(e.IndexSet.Value)

	case ast.ExprArrayLit, ast.ExprTupleLit:
		for _, el := range e.Elems {
			fr.resolveExpr(el)
		}

	case ast.ExprHashLit:
		for _, entry := range e.Hash {
			fr.resolveExpr(entry.Key)
			fr.resolveExpr(entry.Value)
		}

	case ast.ExprRangeLit:
		fr.resolveExpr(e.RangeLit.Start)
		fr.resolveExpr(e.RangeLit.End)
		if e.RangeLit.Step != nil {
			fr.resolveExpr(e.RangeLit.Step)
		}

	case ast.ExprBlockLit:
		child := newFuncResolver(fr.r, fr)
		paramSlots := make([]ast.SlotID, len(e.BlockLit.Params))
		for i, p := range e.BlockLit.Params {
			paramSlots[i] = child.declare(p.Name, p.Type, p.Ownership == ast.OwnMut)
		}
		child.resolveBlock(e.BlockLit.Body)
		e.BlockLit.Captures = child.captures
		e.BlockLit.ParamSlots = paramSlots
		e.BlockLit.NumSlots = int(child.next) - 1
		e.BlockLit.SlotTypes = child.slotTypes

	case ast.ExprAwait:
		fr.resolveExpr(e.Await)

	case ast.ExprCast:
		fr.resolveExpr(e.Cast.Value)

	case ast.ExprBox:
		fr.resolveExpr(e.Box)

	case ast.ExprUnbox:
		fr.resolveExpr(e.Unbox.Value)

	case ast.ExprIsInstance:
		fr.resolveExpr(e.IsInstance.Value)

	case ast.ExprMatch:
		fr.resolveExpr(e.Match.Subject)
		for i := range e.Match.Arms {
			arm := &e.Match.Arms[i]
			fr.pushScope()
			if arm.BindName != "" {
				arm.BindSlot = fr.declare(arm.BindName, arm.GuardClass, false)
			}
			if arm.Guard != nil {
				fr.resolveExpr(arm.Guard)
			}
			fr.resolveExpr(arm.Body)
			fr.popScope()
		}
	}
}
