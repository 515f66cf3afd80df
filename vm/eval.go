package vm

import (
	"context"
	"fmt"

	"github.com/deepnoodle-ai/snakebyte/errors"
	"github.com/deepnoodle-ai/snakebyte/literal"
	"github.com/deepnoodle-ai/snakebyte/op"
)

// stackNeeds lists how many values each operation consumes from the stack.
// Operations whose needs depend on the operand are checked in step.
var stackNeeds = map[op.Code]int{
	op.PopTop:            1,
	op.RotTwo:            2,
	op.RotThree:          3,
	op.DupTop:            1,
	op.DupTopTwo:         2,
	op.UnaryPositive:     1,
	op.UnaryNegative:     1,
	op.UnaryNot:          1,
	op.UnaryInvert:       1,
	op.BinaryPower:       2,
	op.BinaryMultiply:    2,
	op.BinaryModulo:      2,
	op.BinaryAdd:         2,
	op.BinarySubtract:    2,
	op.BinarySubscr:      2,
	op.BinaryFloorDivide: 2,
	op.BinaryTrueDivide:  2,
	op.InplaceAdd:        2,
	op.InplaceSubtract:   2,
	op.InplaceMultiply:   2,
	op.StoreSubscr:       3,
	op.BinaryLShift:      2,
	op.BinaryRShift:      2,
	op.BinaryAnd:         2,
	op.BinaryXor:         2,
	op.BinaryOr:          2,
	op.GetIter:           1,
	op.PrintExpr:         1,
	op.ReturnValue:       1,
	op.StoreName:         1,
	op.UnpackSequence:    1,
	op.ForIter:           1,
	op.StoreGlobal:       1,
	op.CompareOp:         2,
	op.JumpIfFalseOrPop:  1,
	op.JumpIfTrueOrPop:   1,
	op.PopJumpIfFalse:    1,
	op.PopJumpIfTrue:     1,
	op.StoreFast:         1,
}

// eval runs instructions until RETURN_VALUE or the end of the code.
func (vm *VirtualMachine) eval(ctx context.Context) (Value, error) {
	var instructionCount int
	checkInterval := vm.contextCheckInterval
	doneChan := ctx.Done()

	for vm.ip < len(vm.code) {
		if checkInterval > 0 && doneChan != nil {
			instructionCount++
			if instructionCount >= checkInterval {
				instructionCount = 0
				select {
				case <-doneChan:
					return nil, ctx.Err()
				default:
				}
			}
		}

		offset := vm.ip
		info := vm.table.Get(op.Code(vm.code[offset]))
		if !info.IsValid() {
			return nil, vm.fail(offset, "unknown opcode %d", vm.code[offset])
		}
		var operand uint16
		next := offset + 1
		if info.Kind.HasOperand() {
			if offset+2 >= len(vm.code) {
				return nil, vm.fail(offset, "truncated operand")
			}
			operand = uint16(vm.code[offset+1]) | uint16(vm.code[offset+2])<<8
			next = offset + 3
		}

		if vm.observer != nil {
			event := StepEvent{
				Offset:     offset,
				Opcode:     info.Code,
				Name:       info.Name,
				Operand:    operand,
				HasOperand: info.Kind.HasOperand(),
				StackDepth: len(vm.stack),
			}
			if !vm.observer.OnStep(event) {
				return nil, vm.fail(offset, "execution halted by observer")
			}
		}

		if need := stackNeeds[info.Code]; len(vm.stack) < need {
			return nil, vm.fail(offset, "stack underflow: %s needs %d values, have %d",
				info.Name, need, len(vm.stack))
		}

		vm.ip = next
		result, done, err := vm.step(info, operand)
		if err != nil {
			return nil, vm.wrap(offset, err)
		}
		if done {
			return result, nil
		}
	}
	return nil, nil
}

func (vm *VirtualMachine) fail(offset int, format string, args ...any) *errors.RuntimeError {
	err := errors.RuntimeErrorf(format, args...)
	err.Offset = offset
	err.Opcode = vm.opcodeName(offset)
	return err
}

func (vm *VirtualMachine) wrap(offset int, err error) error {
	if rerr, ok := err.(*errors.RuntimeError); ok {
		return rerr
	}
	return &errors.RuntimeError{
		Message: err.Error(),
		Offset:  offset,
		Opcode:  vm.opcodeName(offset),
		Err:     err,
	}
}

func (vm *VirtualMachine) jump(target uint16) error {
	if int(target) > len(vm.code) {
		return fmt.Errorf("jump target %d is outside the code (length %d)", target, len(vm.code))
	}
	vm.ip = int(target)
	return nil
}

// step executes a single decoded instruction. done is true when the unit
// returned.
func (vm *VirtualMachine) step(info op.Info, operand uint16) (result Value, done bool, err error) {
	switch info.Code {
	case op.Nop:
	case op.PopTop:
		vm.pop()
	case op.RotTwo:
		n := len(vm.stack)
		vm.stack[n-1], vm.stack[n-2] = vm.stack[n-2], vm.stack[n-1]
	case op.RotThree:
		n := len(vm.stack)
		vm.stack[n-1], vm.stack[n-2], vm.stack[n-3] = vm.stack[n-2], vm.stack[n-3], vm.stack[n-1]
	case op.DupTop:
		err = vm.push(vm.top())
	case op.DupTopTwo:
		n := len(vm.stack)
		if err = vm.push(vm.stack[n-2]); err == nil {
			err = vm.push(vm.stack[n-1])
		}

	case op.UnaryPositive, op.UnaryNegative, op.UnaryNot, op.UnaryInvert:
		var v Value
		if v, err = unaryOp(info.Code, vm.pop()); err == nil {
			err = vm.push(v)
		}

	case op.BinaryPower, op.BinaryMultiply, op.BinaryModulo, op.BinaryAdd,
		op.BinarySubtract, op.BinaryFloorDivide, op.BinaryTrueDivide,
		op.InplaceAdd, op.InplaceSubtract, op.InplaceMultiply,
		op.BinaryLShift, op.BinaryRShift, op.BinaryAnd, op.BinaryXor, op.BinaryOr:
		b := vm.pop()
		a := vm.pop()
		var v Value
		if v, err = binaryOp(info.Code, a, b); err == nil {
			err = vm.push(v)
		}

	case op.BinarySubscr:
		index := vm.pop()
		container := vm.pop()
		var v Value
		if v, err = subscript(container, index); err == nil {
			err = vm.push(v)
		}
	case op.StoreSubscr:
		index := vm.pop()
		container := vm.pop()
		value := vm.pop()
		err = storeSubscript(container, index, value)

	case op.CompareOp:
		b := vm.pop()
		a := vm.pop()
		var v Value
		if v, err = compareOp(op.CompareOpType(operand), a, b); err == nil {
			err = vm.push(v)
		}

	case op.LoadConst:
		if int(operand) >= vm.unit.ConstantCount() {
			return nil, false, fmt.Errorf("constant index %d out of range", operand)
		}
		err = vm.push(vm.unit.ConstantAt(int(operand)))
	case op.LoadName, op.LoadGlobal:
		var name string
		if name, err = vm.name(operand); err != nil {
			return nil, false, err
		}
		var v Value
		if v, err = vm.lookupName(name); err == nil {
			err = vm.push(v)
		}
	case op.StoreName, op.StoreGlobal:
		var name string
		if name, err = vm.name(operand); err == nil {
			vm.globals[name] = vm.pop()
		}
	case op.DeleteName:
		var name string
		if name, err = vm.name(operand); err != nil {
			return nil, false, err
		}
		if _, ok := vm.globals[name]; !ok {
			return nil, false, fmt.Errorf("name '%s' is not defined", name)
		}
		delete(vm.globals, name)
	case op.LoadFast:
		if int(operand) >= len(vm.locals) {
			return nil, false, fmt.Errorf("local index %d out of range", operand)
		}
		v := vm.locals[operand]
		if v == unbound {
			return nil, false, fmt.Errorf("local variable '%s' referenced before assignment",
				vm.unit.VarNameAt(int(operand)))
		}
		err = vm.push(v)
	case op.StoreFast:
		if int(operand) >= len(vm.locals) {
			return nil, false, fmt.Errorf("local index %d out of range", operand)
		}
		vm.locals[operand] = vm.pop()
	case op.DeleteFast:
		if int(operand) >= len(vm.locals) {
			return nil, false, fmt.Errorf("local index %d out of range", operand)
		}
		if vm.locals[operand] == unbound {
			return nil, false, fmt.Errorf("local variable '%s' referenced before assignment",
				vm.unit.VarNameAt(int(operand)))
		}
		vm.locals[operand] = unbound

	case op.BuildTuple, op.BuildList:
		n := int(operand)
		if len(vm.stack) < n {
			return nil, false, fmt.Errorf("stack underflow: need %d values, have %d", n, len(vm.stack))
		}
		items := vm.popN(n)
		if info.Code == op.BuildTuple {
			err = vm.push(literal.Tuple(items))
		} else {
			err = vm.push(literal.List(items))
		}
	case op.UnpackSequence:
		err = vm.unpack(int(operand))

	case op.JumpForward, op.JumpAbsolute:
		err = vm.jump(operand)
	case op.PopJumpIfFalse:
		if !truthy(vm.pop()) {
			err = vm.jump(operand)
		}
	case op.PopJumpIfTrue:
		if truthy(vm.pop()) {
			err = vm.jump(operand)
		}
	case op.JumpIfFalseOrPop:
		if truthy(vm.top()) {
			vm.pop()
		} else {
			err = vm.jump(operand)
		}
	case op.JumpIfTrueOrPop:
		if truthy(vm.top()) {
			err = vm.jump(operand)
		} else {
			vm.pop()
		}

	case op.GetIter:
		var it *iterator
		if it, err = iterate(vm.pop()); err == nil {
			err = vm.push(it)
		}
	case op.ForIter:
		it, ok := vm.top().(*iterator)
		if !ok {
			return nil, false, fmt.Errorf("'%s' object is not an iterator", typeName(vm.top()))
		}
		if v, more := it.next(); more {
			err = vm.push(v)
		} else {
			vm.pop()
			err = vm.jump(operand)
		}

	case op.SetupLoop:
		if len(vm.blocks) >= MaxBlockDepth {
			return nil, false, fmt.Errorf("too many statically nested blocks")
		}
		vm.blocks = append(vm.blocks, block{end: int(operand), level: len(vm.stack)})
	case op.PopBlock:
		if len(vm.blocks) == 0 {
			return nil, false, fmt.Errorf("no block to pop")
		}
		vm.blocks = vm.blocks[:len(vm.blocks)-1]
	case op.BreakLoop:
		if len(vm.blocks) == 0 {
			return nil, false, fmt.Errorf("'break' outside loop")
		}
		b := vm.blocks[len(vm.blocks)-1]
		vm.blocks = vm.blocks[:len(vm.blocks)-1]
		if len(vm.stack) > b.level {
			vm.popN(len(vm.stack) - b.level)
		}
		err = vm.jump(uint16(b.end))
	case op.ContinueLoop:
		if len(vm.blocks) == 0 {
			return nil, false, fmt.Errorf("'continue' not properly in loop")
		}
		err = vm.jump(operand)

	case op.CallFunction:
		err = vm.call(operand)
	case op.PrintExpr:
		if v := vm.pop(); v != nil {
			_, err = fmt.Fprintln(vm.stdout, Repr(v))
		}
	case op.ReturnValue:
		return vm.pop(), true, nil

	default:
		return nil, false, fmt.Errorf("unsupported opcode %s", info.Name)
	}
	return nil, false, err
}

func (vm *VirtualMachine) name(index uint16) (string, error) {
	if int(index) >= vm.unit.NameCount() {
		return "", fmt.Errorf("name index %d out of range", index)
	}
	return vm.unit.NameAt(int(index)), nil
}

func (vm *VirtualMachine) unpack(n int) error {
	v := vm.pop()
	var items []Value
	switch v := v.(type) {
	case literal.Tuple:
		items = v
	case literal.List:
		items = v
	default:
		it, err := iterate(v)
		if err != nil {
			return fmt.Errorf("cannot unpack non-iterable %s object", typeName(v))
		}
		for item, ok := it.next(); ok; item, ok = it.next() {
			items = append(items, item)
		}
	}
	if len(items) != n {
		return fmt.Errorf("cannot unpack %d values into %d targets", len(items), n)
	}
	for i := n - 1; i >= 0; i-- {
		if err := vm.push(items[i]); err != nil {
			return err
		}
	}
	return nil
}

// call implements CALL_FUNCTION. The low byte of the operand is the number
// of positional arguments and the high byte the number of keyword pairs.
func (vm *VirtualMachine) call(operand uint16) error {
	positional := int(operand & 0xff)
	keywords := int(operand >> 8)
	if keywords > 0 {
		return fmt.Errorf("keyword arguments are not supported")
	}
	if len(vm.stack) < positional+1 {
		return fmt.Errorf("stack underflow: call needs %d values, have %d", positional+1, len(vm.stack))
	}
	args := vm.popN(positional)
	fn := vm.pop()
	builtin, ok := fn.(*Builtin)
	if !ok {
		return fmt.Errorf("'%s' object is not callable", typeName(fn))
	}
	result, err := builtin.Fn(vm, args)
	if err != nil {
		return err
	}
	return vm.push(result)
}

func storeSubscript(container, index, value Value) error {
	list, ok := container.(literal.List)
	if !ok {
		return fmt.Errorf("'%s' object does not support item assignment", typeName(container))
	}
	i, err := normalizeIndex(index, len(list), "list assignment")
	if err != nil {
		return err
	}
	list[i] = value
	return nil
}
