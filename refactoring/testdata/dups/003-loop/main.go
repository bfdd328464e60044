package main

import "fmt"

func grow(xs []int) int {
	v := 0
	v = v + len(xs)
	return 0
}

func repeat(xs []int) {
	v := 1
	for range xs {
		fmt.Println(v)
		v = v + len(xs)
	}
}

func main() {
	fmt.Println(grow([]int{1}))
	repeat([]int{2})
}

//<<<<<dups,7,2,7,17,false,pass
