package main

import "fmt"

func first(xs []int) int {
	total := 0
	for _, x := range xs {
		total += x
	}
	return total
}

func second(ys []int) int {
	sum := 0
	for _, y := range ys {
		sum += y
	}
	return sum
}

func main() {
	fmt.Println(first([]int{1}), second([]int{2}))
}

//<<<<<dups,6,2,9,3,false,pass
//<<<<<dups,5,6,5,11,false,fail
//<<<<<dups,6,2,8,5,false,fail
//<<<<<dups,5,26,11,2,false,fail
