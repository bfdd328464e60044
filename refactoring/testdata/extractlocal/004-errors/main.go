package main

func main() {
	s := []int{1, 2}
	s[0] = 5
	_ = len(s)
}

//<<<<<extractlocal,5,2,5,6,v,false,fail
//<<<<<extractlocal,6,6,6,12,1x,false,fail
//<<<<<extractlocal,6,6,6,12,s,false,fail
//<<<<<extractlocal,4,2,4,3,t,false,fail
